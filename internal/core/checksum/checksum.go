package checksum

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/opencontainers/go-digest"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/sha3"
	"golang.org/x/time/rate"

	"github.com/eisonai/devkit/internal/domain"
)

// Algorithm represents the hashing algorithm to use.
// Names follow Python's hashlib so existing invocations keep working.
type Algorithm string

const (
	// MD5 algorithm (fast, fine for content comparison)
	MD5 Algorithm = "md5"
	// SHA1 algorithm
	SHA1 Algorithm = "sha1"
	// SHA256 algorithm (recommended default)
	SHA256 Algorithm = Algorithm(digest.SHA256)
	// SHA384 algorithm
	SHA384 Algorithm = Algorithm(digest.SHA384)
	// SHA512 algorithm
	SHA512 Algorithm = Algorithm(digest.SHA512)
	// SHA3_256 algorithm
	SHA3_256 Algorithm = "sha3_256"
	// SHA3_512 algorithm
	SHA3_512 Algorithm = "sha3_512"
	// BLAKE2b algorithm (512-bit digest)
	BLAKE2b Algorithm = "blake2b"
	// BLAKE2s algorithm (256-bit digest)
	BLAKE2s Algorithm = "blake2s"
	// XXH64 is a non-cryptographic 64-bit hash, only for trusted trees
	XXH64 Algorithm = "xxh64"
)

const (
	// DefaultAlgorithm is used when no algorithm is configured
	DefaultAlgorithm = SHA256

	// DefaultChunkSize is the positional window used for partial similarity
	DefaultChunkSize = 8 * 1024 * 1024 // 8MiB
)

// Options configures the chunk calculator
type Options struct {
	// ChunkSize is the window hashed on its own. Larger windows mean fewer
	// chunks and coarser similarity.
	ChunkSize int

	// Limiter throttles read throughput in bytes/sec (nil = unlimited)
	Limiter *rate.Limiter
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{
		ChunkSize: DefaultChunkSize,
	}
}

// Sum is the result of hashing one stream
type Sum struct {
	// Digest of the whole stream
	Digest string
	// Chunks holds one digest per window, in stream order
	Chunks []string
	// Size is the number of bytes read
	Size int64
}

// Calculator computes whole-stream and per-window digests
type Calculator interface {
	// Calculate streams reader once, returning the full digest and the
	// ordered chunk digests. Returns ctx.Err() if the context is cancelled.
	Calculate(ctx context.Context, reader io.Reader, algo Algorithm) (Sum, error)
}

// ChunkCalculator implements Calculator.
// It reuses its read buffer and is not safe for concurrent use.
type ChunkCalculator struct {
	opts Options
	buf  []byte
}

// NewCalculator creates a new calculator with the given options
func NewCalculator(opts Options) *ChunkCalculator {
	return &ChunkCalculator{opts: opts}
}

// NewDefaultCalculator creates a calculator with default options
func NewDefaultCalculator() *ChunkCalculator {
	return NewCalculator(DefaultOptions())
}

// NewIOLimiter returns a limiter allowing bytesPerSec read throughput,
// or nil when bytesPerSec is not positive.
func NewIOLimiter(bytesPerSec int64) *rate.Limiter {
	if bytesPerSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec))
}

// Calculate implements the Calculator interface
func (c *ChunkCalculator) Calculate(ctx context.Context, reader io.Reader, algo Algorithm) (Sum, error) {
	if c.opts.ChunkSize <= 0 {
		return Sum{}, fmt.Errorf("%w: %d", domain.ErrInvalidChunkSize, c.opts.ChunkSize)
	}

	full, err := New(algo)
	if err != nil {
		return Sum{}, err
	}
	window, err := New(algo)
	if err != nil {
		return Sum{}, err
	}

	if len(c.buf) != c.opts.ChunkSize {
		c.buf = make([]byte, c.opts.ChunkSize)
	}

	var sum Sum
	for {
		select {
		case <-ctx.Done():
			return Sum{}, ctx.Err()
		default:
		}

		// ReadFull keeps windows aligned to ChunkSize regardless of how
		// the underlying reader splits its reads.
		n, readErr := io.ReadFull(reader, c.buf)
		if n > 0 {
			if err := c.throttle(ctx, n); err != nil {
				return Sum{}, err
			}

			data := c.buf[:n]
			if _, err := full.Write(data); err != nil {
				return Sum{}, fmt.Errorf("hash write error: %w", err)
			}
			window.Reset()
			if _, err := window.Write(data); err != nil {
				return Sum{}, fmt.Errorf("hash write error: %w", err)
			}
			sum.Chunks = append(sum.Chunks, hex.EncodeToString(window.Sum(nil)))
			sum.Size += int64(n)
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return Sum{}, fmt.Errorf("read error: %w", readErr)
		}
	}

	sum.Digest = hex.EncodeToString(full.Sum(nil))
	return sum, nil
}

// throttle blocks until the limiter admits n bytes
func (c *ChunkCalculator) throttle(ctx context.Context, n int) error {
	lim := c.opts.Limiter
	if lim == nil {
		return nil
	}
	burst := lim.Burst()
	if burst <= 0 {
		return nil
	}
	for n > 0 {
		step := n
		if step > burst {
			step = burst
		}
		if err := lim.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// New returns a fresh hash.Hash for the algorithm
func New(algo Algorithm) (hash.Hash, error) {
	switch algo {
	case MD5:
		return md5.New(), nil
	case SHA1:
		return sha1.New(), nil
	case SHA256, SHA384, SHA512:
		d := digest.Algorithm(algo)
		if !d.Available() {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, algo)
		}
		return d.Hash(), nil
	case SHA3_256:
		return sha3.New256(), nil
	case SHA3_512:
		return sha3.New512(), nil
	case BLAKE2b:
		return blake2b.New512(nil)
	case BLAKE2s:
		return blake2s.New256(nil)
	case XXH64:
		return xxhash.New(), nil
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedAlgorithm, algo)
	}
}

// IsSupported checks if the given algorithm is supported
func IsSupported(algo Algorithm) bool {
	for _, a := range Algorithms() {
		if a == algo {
			return true
		}
	}
	return false
}

// Algorithms lists every supported algorithm name
func Algorithms() []Algorithm {
	return []Algorithm{MD5, SHA1, SHA256, SHA384, SHA512, SHA3_256, SHA3_512, BLAKE2b, BLAKE2s, XXH64}
}
