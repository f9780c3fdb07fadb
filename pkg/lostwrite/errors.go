package lostwrite

import "errors"

var (
	errNegativeOffset = errors.New("negative offset")
)
