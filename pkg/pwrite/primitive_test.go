package pwrite

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestSyscallWritesAtOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.dbf")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	n, err := Syscall().Pwrite(int(f.Fd()), []byte("block"), 8192)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 5)
	_, err = f.ReadAt(buf, 8192)
	require.NoError(t, err)
	assert.Equal(t, "block", string(buf))
}

func TestResolverResolvesOnce(t *testing.T) {
	var calls atomic.Int32
	r := NewResolver(func() (Primitive, error) {
		calls.Add(1)
		return PrimitiveFunc(func(fd int, p []byte, off int64) (int, error) {
			return len(p), nil
		}), nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := r.Pwrite(3, []byte("abcd"), 0)
			assert.NoError(t, err)
			assert.Equal(t, 4, n)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolverCachesFailure(t *testing.T) {
	var calls atomic.Int32
	cause := errors.New("symbol not found")
	r := NewResolver(func() (Primitive, error) {
		calls.Add(1)
		return nil, cause
	})

	for i := 0; i < 3; i++ {
		n, err := r.Pwrite(3, []byte("abcd"), 0)
		assert.Equal(t, -1, n)
		assert.ErrorIs(t, err, ErrUnresolved)
		assert.ErrorIs(t, err, cause)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestResolverNilBinding(t *testing.T) {
	r := NewResolver(func() (Primitive, error) { return nil, nil })
	_, err := r.Pwrite(3, nil, 0)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.ErrorIs(t, err, unix.ENOSYS)

	var empty Resolver
	_, err = empty.Resolve()
	assert.ErrorIs(t, err, unix.ENOSYS)
}

func TestStatic(t *testing.T) {
	want := errors.New("disk full")
	r := Static(PrimitiveFunc(func(fd int, p []byte, off int64) (int, error) {
		assert.Equal(t, 7, fd)
		assert.Equal(t, int64(16384), off)
		return 0, want
	}))
	n, err := r.Pwrite(7, []byte("x"), 16384)
	assert.Equal(t, 0, n)
	assert.Same(t, want, err)
}

func TestErrno(t *testing.T) {
	assert.Equal(t, syscall.ENOSPC, Errno(syscall.ENOSPC))
	_, err := NewResolver(nil).Resolve()
	assert.Equal(t, syscall.ENOSYS, Errno(err))
	assert.Equal(t, syscall.EBADF, Errno(&os.PathError{Op: "write", Path: "/a", Err: syscall.EBADF}))
	assert.Equal(t, syscall.EIO, Errno(errors.New("opaque")))
}
