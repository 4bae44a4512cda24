package service

import (
	"fmt"
	"os"
)

// MissingInputError reports a required upstream file that is absent. Only the
// unit that needed it is abandoned.
type MissingInputError struct {
	Unit string
	Path string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("%s: missing input %s", e.Unit, e.Path)
}

func (e *MissingInputError) Unwrap() error {
	return os.ErrNotExist
}
