// Package vault persists snapshots to a local file with write debouncing.
// Rapid bursts of store changes collapse into one write a couple of seconds
// later, and an external edit to the file (another process, a synced copy)
// can be observed through a change subscription.
package vault

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrPermissionRequired distinguishes a denied file handle from other I/O
// failures so the caller can prompt for a different location.
var ErrPermissionRequired = errors.New("vault: permission required for file access")

// WriteFunc produces the serialized snapshot to persist.
type WriteFunc func() ([]byte, error)

// Vault is a debounced file sink. RequestSave may be called on every store
// mutation; writes are coalesced and happen at most once per debounce window.
type Vault struct {
	path     string
	debounce time.Duration
	write    WriteFunc

	mu       sync.Mutex
	timer    *time.Timer
	lastSave time.Time

	subscribers []chan struct{}
	stopPoll    chan struct{}
	pollOnce    sync.Once
}

func New(path string, debounce time.Duration, write WriteFunc) *Vault {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	return &Vault{
		path:     path,
		debounce: debounce,
		write:    write,
		stopPoll: make(chan struct{}),
	}
}

func (v *Vault) Path() string { return v.path }

// RequestSave schedules a write after the debounce window. A request landing
// while a write is already pending resets the timer instead of stacking a
// second write.
func (v *Vault) RequestSave() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.timer != nil {
		v.timer.Reset(v.debounce)
		return
	}
	v.timer = time.AfterFunc(v.debounce, func() {
		if err := v.Flush(); err != nil {
			log.Printf("[vault] save: %v", err)
		}
	})
}

// Flush writes the snapshot now, cancelling any pending debounced write. The
// write goes through a temp file and rename so a crash mid-write never
// leaves a truncated vault.
func (v *Vault) Flush() error {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()

	data, err := v.write()
	if err != nil {
		return err
	}
	tmp := v.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return ErrPermissionRequired
		}
		return err
	}
	if err := os.Rename(tmp, v.path); err != nil {
		return err
	}
	v.mu.Lock()
	v.lastSave = time.Now()
	v.mu.Unlock()
	return nil
}

// Read returns the current vault file contents.
func (v *Vault) Read() ([]byte, error) {
	data, err := os.ReadFile(v.path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, ErrPermissionRequired
		}
		return nil, err
	}
	return data, nil
}

// Subscribe returns a channel that receives a signal when the vault file
// changes on disk outside this process. Detection is mtime polling; writes
// made through Flush are not reported.
func (v *Vault) Subscribe() <-chan struct{} {
	v.mu.Lock()
	ch := make(chan struct{}, 1)
	v.subscribers = append(v.subscribers, ch)
	v.mu.Unlock()
	v.pollOnce.Do(func() { go v.poll() })
	return ch
}

func (v *Vault) poll() {
	var lastMod time.Time
	if info, err := os.Stat(v.path); err == nil {
		lastMod = info.ModTime()
	}
	tick := time.NewTicker(3 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			info, err := os.Stat(v.path)
			if err != nil {
				continue
			}
			mod := info.ModTime()
			if mod.Equal(lastMod) {
				continue
			}
			lastMod = mod
			v.mu.Lock()
			external := mod.After(v.lastSave.Add(500 * time.Millisecond))
			subs := v.subscribers
			v.mu.Unlock()
			if !external {
				continue
			}
			for _, ch := range subs {
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		case <-v.stopPoll:
			return
		}
	}
}

// Close flushes any pending write and stops the poller.
func (v *Vault) Close() error {
	v.mu.Lock()
	pending := v.timer != nil
	v.mu.Unlock()
	close(v.stopPoll)
	if pending {
		return v.Flush()
	}
	return nil
}

// EnsureDir creates the vault file's parent directory.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o700)
}
