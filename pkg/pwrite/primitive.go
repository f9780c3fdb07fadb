// Package pwrite binds the genuine positional-write primitive that an
// interceptor delegates to.
package pwrite

import (
	"errors"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

// Primitive writes len(p) bytes to fd at offset off without moving the
// file offset, reporting how many bytes were written.
type Primitive interface {
	Pwrite(fd int, p []byte, off int64) (int, error)
}

// PrimitiveFunc adapts a function into Primitive.
type PrimitiveFunc func(fd int, p []byte, off int64) (int, error)

func (f PrimitiveFunc) Pwrite(fd int, p []byte, off int64) (int, error) {
	return f(fd, p, off)
}

type syscallPrimitive struct{}

// Syscall returns the kernel pwrite64 as seen by Go programs.
func Syscall() Primitive {
	return syscallPrimitive{}
}

func (syscallPrimitive) Pwrite(fd int, p []byte, off int64) (int, error) {
	return unix.Pwrite(fd, p, off)
}

// ResolveFunc locates the genuine primitive. It is called at most once
// per Resolver.
type ResolveFunc func() (Primitive, error)

// Resolver lazily resolves a Primitive on first use and caches the
// binding, or the resolution failure, for its whole lifetime.
type Resolver struct {
	resolve ResolveFunc

	once sync.Once
	next Primitive
	err  error
}

func NewResolver(resolve ResolveFunc) *Resolver {
	return &Resolver{resolve: resolve}
}

// Static returns a Resolver already bound to p.
func Static(p Primitive) *Resolver {
	return NewResolver(func() (Primitive, error) { return p, nil })
}

func (r *Resolver) Resolve() (Primitive, error) {
	r.once.Do(func() {
		if r.resolve == nil {
			r.err = errx.Wrap(ErrUnresolved, unix.ENOSYS)
			return
		}
		next, err := r.resolve()
		switch {
		case err != nil:
			r.err = errx.Wrap(ErrUnresolved, err)
		case next == nil:
			r.err = errx.Wrap(ErrUnresolved, unix.ENOSYS)
		default:
			r.next = next
		}
	})
	return r.next, r.err
}

// Pwrite forwards to the resolved primitive. When resolution failed the
// call returns -1 and an error matching both ErrUnresolved and
// unix.ENOSYS (or the resolver's cause).
func (r *Resolver) Pwrite(fd int, p []byte, off int64) (int, error) {
	next, err := r.Resolve()
	if err != nil {
		return -1, err
	}
	return next.Pwrite(fd, p, off)
}

// Errno extracts the errno carried by err, or EIO when there is none.
func Errno(err error) syscall.Errno {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return errno
	}
	return syscall.EIO
}
