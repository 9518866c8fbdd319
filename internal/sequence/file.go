package sequence

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
)

const fileBackend = "file"

// FileCounter keeps the next number in a plain-text file. An absent or
// empty file starts the sequence at 1.
type FileCounter struct {
	path string
	mu   sync.Mutex
}

// NewFileCounter creates a counter persisted at path
func NewFileCounter(path string) *FileCounter {
	return &FileCounter{path: path}
}

// Path returns the counter file location.
func (c *FileCounter) Path() string { return c.path }

func (c *FileCounter) Next(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// The lock file guards against other processes sharing the counter.
	lock, err := os.OpenFile(c.path+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return 0, persistErr(fileBackend, "open lock", err)
	}
	defer lock.Close()
	if err := lockFile(lock); err != nil {
		return 0, persistErr(fileBackend, "lock", err)
	}
	defer unlockFile(lock)

	current, err := c.read()
	if err != nil {
		return 0, err
	}
	if err := c.write(current + 1); err != nil {
		return 0, err
	}
	return current, nil
}

func (c *FileCounter) read() (int, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return 1, nil
	}
	if err != nil {
		return 0, persistErr(fileBackend, "read", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, persistErr(fileBackend, "parse", err)
	}
	if n < 1 {
		return 0, persistErr(fileBackend, "parse", fmt.Errorf("invalid counter value %d", n))
	}
	return n, nil
}

// write replaces the file atomically so a crash never leaves a torn value.
func (c *FileCounter) write(next int) error {
	tmp, err := os.CreateTemp(filepath.Dir(c.path), filepath.Base(c.path)+".tmp-*")
	if err != nil {
		return persistErr(fileBackend, "write", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strconv.Itoa(next)); err != nil {
		tmp.Close()
		return persistErr(fileBackend, "write", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return persistErr(fileBackend, "sync", err)
	}
	if err := tmp.Close(); err != nil {
		return persistErr(fileBackend, "write", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		return persistErr(fileBackend, "rename", err)
	}
	return nil
}
