package transcode

import (
	"errors"
	"fmt"
)

// Error reports a failed transcode for one asset.
type Error struct {
	Path string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transcode %s asset %q: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var errEmptyOutput = errors.New("codec produced no output")

func wrapError(p string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	return &Error{Path: p, Kind: kind, Err: err}
}
