package testutil

import (
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/arthur-debert/jobtx/pkg/types"
)

// RecordingFS wraps a types.FS and records every call as "op path", in
// call order. Failures can be injected per operation and path.
type RecordingFS struct {
	types.FS

	mu     sync.Mutex
	calls  []string
	faults map[string]error
}

// NewRecordingFS wraps inner.
func NewRecordingFS(inner types.FS) *RecordingFS {
	return &RecordingFS{FS: inner, faults: make(map[string]error)}
}

// Fail makes the next and all later calls of op on path return err.
func (r *RecordingFS) Fail(op, path string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[op+" "+path] = err
}

// Calls returns a copy of the recorded calls.
func (r *RecordingFS) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	copy(out, r.calls)
	return out
}

// Mutations returns only the write, remove and mkdir calls.
func (r *RecordingFS) Mutations() []string {
	var out []string
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, "write ") || strings.HasPrefix(c, "remove ") || strings.HasPrefix(c, "mkdir ") {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the recorded calls.
func (r *RecordingFS) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

func (r *RecordingFS) record(op, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s %s", op, path)
	r.calls = append(r.calls, key)
	return r.faults[key]
}

func (r *RecordingFS) Stat(name string) (fs.FileInfo, error) {
	if err := r.record("stat", name); err != nil {
		return nil, err
	}
	return r.FS.Stat(name)
}

func (r *RecordingFS) ReadFile(name string) ([]byte, error) {
	if err := r.record("read", name); err != nil {
		return nil, err
	}
	return r.FS.ReadFile(name)
}

func (r *RecordingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := r.record("write", name); err != nil {
		return err
	}
	return r.FS.WriteFile(name, data, perm)
}

func (r *RecordingFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := r.record("mkdir", path); err != nil {
		return err
	}
	return r.FS.MkdirAll(path, perm)
}

func (r *RecordingFS) Remove(name string) error {
	if err := r.record("remove", name); err != nil {
		return err
	}
	return r.FS.Remove(name)
}
