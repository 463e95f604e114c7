package source

import (
	"errors"
	"fmt"
)

var errIsDir = errors.New("is a directory")

// IOError reports a path that does not exist or cannot be read. It unwraps
// to the filesystem error, so errors.Is(err, fs.ErrNotExist) holds for
// missing paths.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
