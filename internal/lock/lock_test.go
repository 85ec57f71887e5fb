package lock

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eisonai/devkit/internal/domain"
	"github.com/eisonai/devkit/internal/testutil"
)

func writeInfo(t *testing.T, l *FileLock, info *LockInfo) {
	t.Helper()
	data, err := json.Marshal(info)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(l.lockPath, data, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNewFileLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "assets")

	lock, err := NewFileLock(dir)
	if err != nil {
		t.Fatalf("NewFileLock failed: %v", err)
	}
	if lock.Path() != filepath.Join(dir, LockFileName) {
		t.Errorf("unexpected lock path %s", lock.Path())
	}
	if lock.staleTimeout != DefaultStaleTimeout {
		t.Errorf("expected timeout %v, got %v", DefaultStaleTimeout, lock.staleTimeout)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("lock directory should be created: %v", err)
	}

	if _, err := NewFileLock(""); err == nil {
		t.Error("empty directory should be rejected")
	}
}

func TestAcquireRelease(t *testing.T) {
	lock, err := NewFileLock(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileLock failed: %v", err)
	}

	if lock.IsLocked() {
		t.Error("lock should not be held initially")
	}
	if err := lock.Acquire("assets download"); err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if !lock.IsLocked() {
		t.Error("lock should be held")
	}

	// re-acquiring from the same instance is a no-op
	if err := lock.Acquire("assets download"); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(lock.Path()); !os.IsNotExist(err) {
		t.Error("lock file still exists after release")
	}
	if err := lock.Release(); err != nil {
		t.Errorf("releasing twice should be harmless: %v", err)
	}
}

func TestAcquire_HeldByOtherInstance(t *testing.T) {
	dir := t.TempDir()
	first, _ := NewFileLock(dir)
	second, _ := NewFileLock(dir)

	if err := first.Acquire("first"); err != nil {
		t.Fatal(err)
	}
	defer first.Release()

	err := second.Acquire("second")
	var lockErr *LockError
	if !errors.As(err, &lockErr) {
		t.Fatalf("expected *LockError, got %v", err)
	}
	if !errors.Is(err, domain.ErrLocked) {
		t.Error("LockError should match ErrLocked")
	}
	if lockErr.Holder.PID != os.Getpid() || lockErr.Holder.Command != "first" {
		t.Errorf("unexpected holder %+v", lockErr.Holder)
	}
	if !strings.Contains(err.Error(), "command: first") {
		t.Errorf("message should name the holder: %s", err.Error())
	}
}

func TestConcurrentAcquire(t *testing.T) {
	dir := t.TempDir()

	const goroutines = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired, refused := 0, 0
	release := make(chan struct{})

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lock, err := NewFileLock(dir)
			if err != nil {
				return
			}
			err = lock.Acquire("concurrent")
			mu.Lock()
			if err == nil {
				acquired++
			} else if errors.Is(err, domain.ErrLocked) {
				refused++
			}
			mu.Unlock()
			if err == nil {
				<-release
				lock.Release()
			}
		}()
	}

	// hold until every goroutine has tried
	for {
		mu.Lock()
		done := acquired+refused == goroutines
		mu.Unlock()
		if done {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	if acquired != 1 {
		t.Errorf("expected exactly 1 acquire, got %d", acquired)
	}
	if refused != goroutines-1 {
		t.Errorf("expected %d refusals, got %d", goroutines-1, refused)
	}
}

func TestStaleDetection(t *testing.T) {
	hostname, _ := os.Hostname()

	tests := []struct {
		name    string
		info    LockInfo
		timeout time.Duration
		stale   bool
	}{
		{
			name:  "dead process on this host",
			info:  LockInfo{PID: 999999, Hostname: hostname, StartTime: time.Now()},
			stale: true,
		},
		{
			name:    "live process ignores timeout",
			info:    LockInfo{PID: os.Getpid(), Hostname: hostname, StartTime: time.Now().Add(-time.Hour)},
			timeout: time.Millisecond,
			stale:   false,
		},
		{
			name:    "old foreign host",
			info:    LockInfo{PID: 1, Hostname: "foreign-" + testutil.RandomString(8), StartTime: time.Now().Add(-time.Hour)},
			timeout: time.Minute,
			stale:   true,
		},
		{
			name:    "recent foreign host",
			info:    LockInfo{PID: 1, Hostname: "foreign-" + testutil.RandomString(8), StartTime: time.Now()},
			timeout: time.Minute,
			stale:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lock, _ := NewFileLock(t.TempDir())
			if tt.timeout > 0 {
				lock.SetStaleTimeout(tt.timeout)
			}
			writeInfo(t, lock, &tt.info)

			if got := lock.isStale(&tt.info); got != tt.stale {
				t.Errorf("isStale() = %v, want %v", got, tt.stale)
			}

			err := lock.Acquire("new")
			if tt.stale && err != nil {
				t.Errorf("stale lock should be replaced: %v", err)
			}
			if !tt.stale && !errors.Is(err, domain.ErrLocked) {
				t.Errorf("live lock should refuse, got %v", err)
			}
			lock.Release()
		})
	}
}

func TestRelease_TakenOver(t *testing.T) {
	lock, _ := NewFileLock(t.TempDir())
	if err := lock.Acquire("mine"); err != nil {
		t.Fatal(err)
	}

	hostname, _ := os.Hostname()
	writeInfo(t, lock, &LockInfo{PID: os.Getpid(), Hostname: hostname, StartTime: time.Now().Add(time.Second)})

	if err := lock.Release(); err == nil {
		t.Error("release of a replaced lock should fail")
	}
	if _, err := os.Stat(lock.Path()); err != nil {
		t.Error("the other holder's lock file must survive")
	}
}
