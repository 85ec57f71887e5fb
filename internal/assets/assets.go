// Package assets downloads the bundled WebLLM model files.
package assets

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/hf"
)

const (
	// RequiredFile must be present in every MLC model repository
	RequiredFile = "mlc-chat-config.json"

	DefaultModelID       = "Qwen3-0.6B-q4f16_1-MLC"
	DefaultWebLLMVersion = "v0_2_80"
	DefaultWasmFile      = "Qwen3-0.6B-q4f16_1-ctx4k_cs1k-webgpu.wasm"
	DefaultWasmBaseURL   = "https://raw.githubusercontent.com/mlc-ai/binary-mlc-llm-libs/main/web-llm-models"
	DefaultDest          = "Shared (Extension)/Resources/webllm-assets"
)

// Source names the model and runtime to fetch
type Source struct {
	ModelID string
	// Repo defaults to mlc-ai/<ModelID>
	Repo          string
	WebLLMVersion string
	WasmFile      string
	WasmBaseURL   string
}

// DefaultSource is the model bundled with the extension
func DefaultSource() Source {
	return Source{
		ModelID:       DefaultModelID,
		Repo:          "mlc-ai/" + DefaultModelID,
		WebLLMVersion: DefaultWebLLMVersion,
		WasmFile:      DefaultWasmFile,
		WasmBaseURL:   DefaultWasmBaseURL,
	}
}

// RepoName returns the HuggingFace repository of the source
func (s Source) RepoName() string {
	if s.Repo != "" {
		return s.Repo
	}
	return "mlc-ai/" + s.ModelID
}

// WasmURL is the download URL of the WebLLM runtime library
func (s Source) WasmURL() string {
	base := s.WasmBaseURL
	if base == "" {
		base = DefaultWasmBaseURL
	}
	return strings.TrimSuffix(base, "/") + "/" + s.WebLLMVersion + "/" + s.WasmFile
}

// Item is one file to fetch
type Item struct {
	URL  string
	Dest string
}

// Plan lists every download in order: model files as listed by the Hub, then the wasm
type Plan struct {
	ModelRoot string
	WasmRoot  string
	Items     []Item
}

// BuildPlan maps the repository listing to destination paths under destRoot.
// The listing must contain RequiredFile.
func BuildPlan(src Source, destRoot string, files []string, hub *hf.Client) (*Plan, error) {
	if !slices.Contains(files, RequiredFile) {
		return nil, fmt.Errorf("%w: %s not found", domain.ErrUnexpectedLayout, RequiredFile)
	}

	plan := &Plan{
		ModelRoot: filepath.Join(destRoot, "models", src.ModelID, "resolve", "main"),
		WasmRoot:  filepath.Join(destRoot, "wasm"),
	}

	repo := src.RepoName()
	for _, name := range files {
		plan.Items = append(plan.Items, Item{
			URL:  hub.ResolveURL(repo, name),
			Dest: filepath.Join(plan.ModelRoot, filepath.FromSlash(name)),
		})
	}
	plan.Items = append(plan.Items, Item{
		URL:  src.WasmURL(),
		Dest: filepath.Join(plan.WasmRoot, src.WasmFile),
	})
	return plan, nil
}
