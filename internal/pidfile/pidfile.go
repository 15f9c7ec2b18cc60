// Package pidfile keeps a second instance from fighting over the same
// security group rules.
package pidfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var ErrAlreadyRunning = errors.New("already running")

type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Acquire fails with ErrAlreadyRunning when the recorded process is still
// alive. A stale or unreadable file is replaced.
func (f *File) Acquire() error {
	data, err := os.ReadFile(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		pid, convErr := strconv.Atoi(strings.TrimSpace(string(data)))
		if convErr == nil && pid != os.Getpid() && processAlive(pid) {
			return fmt.Errorf("%w: process %d", ErrAlreadyRunning, pid)
		}
		_ = os.Remove(f.path)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0644)
}

func (f *File) Release() {
	_ = os.Remove(f.path)
}
