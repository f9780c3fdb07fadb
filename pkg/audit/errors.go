package audit

import "errors"

var (
	ErrOpenLog     = errors.New("open audit log")
	ErrWriteLog    = errors.New("write audit log")
	ErrShortWrite  = errors.New("short audit log write")
	ErrReadLog     = errors.New("read audit log")
	ErrUnknownLine = errors.New("unrecognized audit log line")
)
