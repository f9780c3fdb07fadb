package pwrite

import "errors"

var (
	ErrUnresolved = errors.New("resolve genuine pwrite64")
)
