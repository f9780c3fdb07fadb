// Command lostwrite-preload is a shared object that shadows pwrite64 for
// every process it is preloaded into and loses the writes named in
// /tmp/lost_write.cfg.
//
// Build:
//
//	go build -buildmode=c-shared -o lost_write.so ./cmd/lostwrite-preload
//
// Install by adding the absolute path of lost_write.so to
// /etc/ld.so.preload. LD_PRELOAD is ignored for setuid binaries, so the
// system-wide preload list is the only reliable way to reach them. The
// database must use synchronous I/O for its writes to go through pwrite64.
//
// Children forked without exec bypass the interceptor and always reach the
// genuine pwrite64.
package main

/*
#include <stddef.h>
#include <stdint.h>
#include <sys/types.h>

void *lw_resolve_next(void);
ssize_t lw_call_next(void *fn, int fd, const void *buf, size_t count, int64_t offset, int *errnum);
ssize_t lw_forward(int fd, const void *buf, size_t count, int64_t offset, int *errnum);
*/
import "C"

import (
	"math"
	"syscall"
	"unsafe"

	"github.com/jingkaihe/lostwrite/pkg/lostwrite"
	"github.com/jingkaihe/lostwrite/pkg/pwrite"
)

var (
	genuine     = pwrite.NewResolver(resolveNext)
	interceptor = lostwrite.New(lostwrite.Options{Next: genuine})
)

// nextPwrite64 calls the pwrite64 the dynamic loader would have bound
// without this object.
type nextPwrite64 struct {
	fn unsafe.Pointer
}

func resolveNext() (pwrite.Primitive, error) {
	fn := C.lw_resolve_next()
	if fn == nil {
		return nil, syscall.ENOSYS
	}
	return nextPwrite64{fn: fn}, nil
}

func (n nextPwrite64) Pwrite(fd int, p []byte, off int64) (int, error) {
	var buf unsafe.Pointer
	if len(p) > 0 {
		buf = unsafe.Pointer(&p[0])
	}
	var errnum C.int
	written := C.lw_call_next(n.fn, C.int(fd), buf, C.size_t(len(p)), C.int64_t(off), &errnum)
	if written < 0 {
		return int(written), syscall.Errno(errnum)
	}
	return int(written), nil
}

//export lwInterceptPwrite64
func lwInterceptPwrite64(fd C.int, buf unsafe.Pointer, count C.size_t, offset C.int64_t, errnum *C.int) (written C.ssize_t) {
	// Anything the interceptor cannot handle goes to the genuine call
	// untouched, so the host sees exactly what libc would have returned.
	defer func() {
		if recover() != nil {
			written = C.lw_forward(fd, buf, count, offset, errnum)
		}
	}()
	if uint64(count) > math.MaxInt || (buf == nil && count > 0) {
		return C.lw_forward(fd, buf, count, offset, errnum)
	}

	var p []byte
	if count > 0 {
		p = unsafe.Slice((*byte)(buf), int(count))
	}
	n, err := interceptor.Pwrite(int(fd), p, int64(offset))
	if err != nil {
		*errnum = C.int(pwrite.Errno(err))
		return -1
	}
	return C.ssize_t(n)
}

func main() {}
