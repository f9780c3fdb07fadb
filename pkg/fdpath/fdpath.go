// Package fdpath maps open file descriptors back to filesystem paths.
package fdpath

import (
	"errors"
	"os"
	"strconv"

	"github.com/jingkaihe/lostwrite/internal/errx"
)

var (
	ErrResolve = errors.New("resolve descriptor path")
)

// Resolver maps a descriptor of the calling process to the path it was
// opened with.
type Resolver interface {
	Resolve(fd int) (string, error)
}

// Func adapts a function into Resolver. Platforms without a /proc style
// facility supply the mapping this way.
type Func func(fd int) (string, error)

func (f Func) Resolve(fd int) (string, error) {
	return f(fd)
}

const procSelfFD = "/proc/self/fd"

type procResolver struct {
	dir string
}

// Proc resolves descriptors through /proc/self/fd.
func Proc() Resolver {
	return procResolver{dir: procSelfFD}
}

func (p procResolver) Resolve(fd int) (string, error) {
	if fd < 0 {
		return "", errx.With(ErrResolve, ": invalid descriptor %d", fd)
	}
	target, err := os.Readlink(p.dir + "/" + strconv.Itoa(fd))
	if err != nil {
		return "", errx.Wrap(ErrResolve, err)
	}
	return target, nil
}
