package testutil

import (
	"io/fs"

	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/stretchr/testify/mock"
)

// MockFS implements types.FS with testify/mock. A MockFS with no
// expectations fails the test on any call, which is how tests prove a
// code path never touches the filesystem.
type MockFS struct {
	mock.Mock
}

var _ types.FS = (*MockFS)(nil)

func (m *MockFS) Stat(name string) (fs.FileInfo, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(fs.FileInfo), args.Error(1)
}

func (m *MockFS) ReadFile(name string) ([]byte, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	args := m.Called(name, data, perm)
	return args.Error(0)
}

func (m *MockFS) MkdirAll(path string, perm fs.FileMode) error {
	args := m.Called(path, perm)
	return args.Error(0)
}

func (m *MockFS) Remove(name string) error {
	args := m.Called(name)
	return args.Error(0)
}
