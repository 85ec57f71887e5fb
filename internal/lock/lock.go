package lock

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eisonai/devkit/internal/domain"
)

const (
	// LockFileName is the name of the lock file placed in the guarded directory
	LockFileName = ".devkit.lock"
	// DefaultStaleTimeout is the age after which a lock from another host is considered stale
	DefaultStaleTimeout = 30 * time.Minute
)

// LockInfo contains metadata about the lock holder
type LockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartTime time.Time `json:"start_time"`
	Command   string    `json:"command,omitempty"`
}

// FileLock keeps two processes from writing into the same directory
type FileLock struct {
	lockPath     string
	staleTimeout time.Duration
	info         *LockInfo
}

// NewFileLock creates a lock guarding dir. The directory is created if needed.
func NewFileLock(dir string) (*FileLock, error) {
	if dir == "" {
		return nil, errors.New("lock directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	return &FileLock{
		lockPath:     filepath.Join(dir, LockFileName),
		staleTimeout: DefaultStaleTimeout,
	}, nil
}

// Path returns the lock file path
func (l *FileLock) Path() string {
	return l.lockPath
}

// SetStaleTimeout sets the duration after which a foreign-host lock is considered stale
func (l *FileLock) SetStaleTimeout(d time.Duration) {
	l.staleTimeout = d
}

// Acquire takes the lock for command. Acquiring a lock this instance
// already holds is a no-op.
func (l *FileLock) Acquire(command string) error {
	if l.info != nil {
		if existing, err := l.readLockInfo(); err == nil && l.isHeldByThisInstance(existing) {
			return nil
		}
	}

	if existing, err := l.readLockInfo(); err == nil {
		if !l.isStale(existing) {
			return &LockError{Holder: existing, Reason: "lock is held by another process"}
		}
		if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove stale lock: %w", err)
		}
	}

	hostname, _ := os.Hostname()
	info := &LockInfo{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartTime: time.Now(),
		Command:   command,
	}

	// O_EXCL makes creation the arbitration point between racing processes
	file, err := os.OpenFile(l.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			existing, readErr := l.readLockInfo()
			if readErr != nil {
				return fmt.Errorf("lock acquisition race condition: %w", err)
			}
			return &LockError{Holder: existing, Reason: "lock acquired by another process during acquisition"}
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(info); err != nil {
		os.Remove(l.lockPath)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	l.info = info
	return nil
}

// Release removes the lock file if this instance still owns it
func (l *FileLock) Release() error {
	if l.info == nil {
		return nil
	}

	existing, err := l.readLockInfo()
	if err != nil {
		l.info = nil
		return nil
	}
	if !l.isHeldByThisInstance(existing) {
		l.info = nil
		return fmt.Errorf("lock was taken over by PID %d", existing.PID)
	}

	if err := os.Remove(l.lockPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	l.info = nil
	return nil
}

// IsLocked reports whether a live lock exists
func (l *FileLock) IsLocked() bool {
	info, err := l.readLockInfo()
	if err != nil {
		return false
	}
	return !l.isStale(info)
}

func (l *FileLock) readLockInfo() (*LockInfo, error) {
	data, err := os.ReadFile(l.lockPath)
	if err != nil {
		return nil, err
	}

	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("invalid lock file format: %w", err)
	}
	return &info, nil
}

// isStale reports a lock whose process is gone. Locks from other hosts
// cannot be probed and expire after the stale timeout instead.
func (l *FileLock) isStale(info *LockInfo) bool {
	hostname, _ := os.Hostname()
	if info.Hostname == hostname {
		return !processExists(info.PID)
	}
	return time.Since(info.StartTime) > l.staleTimeout
}

func (l *FileLock) isHeldByThisInstance(info *LockInfo) bool {
	if l.info == nil {
		return false
	}
	hostname, _ := os.Hostname()
	return info.PID == os.Getpid() &&
		info.Hostname == hostname &&
		l.info.StartTime.Equal(info.StartTime)
}

// LockError reports a lock held by someone else
type LockError struct {
	Holder *LockInfo
	Reason string
}

func (e *LockError) Error() string {
	if e.Holder != nil {
		return fmt.Sprintf("cannot acquire lock: %s (held by PID %d on %s since %s, command: %s)",
			e.Reason,
			e.Holder.PID,
			e.Holder.Hostname,
			e.Holder.StartTime.Format(time.RFC3339),
			e.Holder.Command,
		)
	}
	return fmt.Sprintf("cannot acquire lock: %s", e.Reason)
}

func (e *LockError) Unwrap() error {
	return domain.ErrLocked
}
