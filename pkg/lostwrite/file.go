package lostwrite

import (
	"io"
	"os"
)

// File routes positional writes on an *os.File through an Interceptor.
// It is the link-time counterpart of the preload shim for Go programs
// that want lost writes without dynamic-loader injection.
type File struct {
	file *os.File
	ic   *Interceptor
}

func Wrap(f *os.File, ic *Interceptor) *File {
	return &File{file: f, ic: ic}
}

// WriteAt issues positional writes until p is exhausted, as os.File does,
// so a short genuine write never goes unreported.
func (f *File) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &os.PathError{Op: "writeat", Path: f.file.Name(), Err: errNegativeOffset}
	}
	written := 0
	for len(p) > 0 {
		n, err := f.ic.Pwrite(int(f.file.Fd()), p, off)
		if err != nil {
			return written, &os.PathError{Op: "write", Path: f.file.Name(), Err: err}
		}
		if n <= 0 {
			return written, &os.PathError{Op: "write", Path: f.file.Name(), Err: io.ErrShortWrite}
		}
		written += n
		p = p[n:]
		off += int64(n)
	}
	return written, nil
}

func (f *File) ReadAt(p []byte, off int64) (int, error) { return f.file.ReadAt(p, off) }
func (f *File) Sync() error                             { return f.file.Sync() }
func (f *File) Close() error                            { return f.file.Close() }
func (f *File) Name() string                            { return f.file.Name() }
func (f *File) Stat() (os.FileInfo, error)              { return f.file.Stat() }

// Unwrap returns the underlying file.
func (f *File) Unwrap() *os.File { return f.file }
