package domain

import "errors"

// Adapter errors - 檔案樹適配器層錯誤
var (
	// ErrNotFound indicates the requested path does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied indicates insufficient permissions
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotDirectory indicates expected a directory but got a file
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotFile indicates expected a file but got a directory
	ErrNotFile = errors.New("not a file")

	// ErrInvalidRoot indicates a scan root is missing or is not a directory.
	// It always wraps ErrNotFound or ErrNotDirectory.
	ErrInvalidRoot = errors.New("invalid root")
)

// Scan errors - 掃描與雜湊錯誤
var (
	// ErrUnsupportedAlgorithm indicates an unknown hash algorithm name
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")

	// ErrInvalidChunkSize indicates a non-positive chunk window
	ErrInvalidChunkSize = errors.New("invalid chunk size")

	// ErrInvalidPattern indicates a malformed ignore glob
	ErrInvalidPattern = errors.New("invalid ignore pattern")
)

// Remote errors - HuggingFace / Telegram 錯誤
var (
	// ErrUnexpectedLayout indicates a model repository is missing required files
	ErrUnexpectedLayout = errors.New("unexpected model repo layout")

	// ErrAPIResponse indicates a remote API answered with a failure
	ErrAPIResponse = errors.New("api response error")

	// ErrMissingToken indicates no bot token could be resolved
	ErrMissingToken = errors.New("missing bot token")
)

// ErrLocked indicates another process holds the destination lock
var ErrLocked = errors.New("destination is locked")

// Config errors - 設定檔錯誤
var (
	// ErrConfigNotFound indicates config file not found
	ErrConfigNotFound = errors.New("config file not found")

	// ErrConfigInvalid indicates config file is malformed
	ErrConfigInvalid = errors.New("invalid config")
)

// RootError reports a scan root that is missing or not a directory.
// errors.Is matches both ErrInvalidRoot and the underlying cause.
type RootError struct {
	// Path is the absolute form of the offending root
	Path string
	// Err is ErrNotFound, ErrNotDirectory or the raw stat error
	Err error
}

func (e *RootError) Error() string {
	return "not a directory: " + e.Path
}

// Unwrap exposes ErrInvalidRoot and the cause to errors.Is / errors.As
func (e *RootError) Unwrap() []error {
	return []error{ErrInvalidRoot, e.Err}
}
