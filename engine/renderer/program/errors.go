package program

import "errors"

// ErrUnknownChannel is returned for a channel outside the program table.
var ErrUnknownChannel = errors.New("program: unknown channel")
