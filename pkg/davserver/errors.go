package davserver

import (
	"errors"
	"os"

	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
)

// toPathError translates filesystem errors into the os errors that
// x/net/webdav tests for with os.IsNotExist and friends. Those helpers do not
// unwrap, so the sentinel has to sit directly inside the *os.PathError.
func toPathError(op, name string, err error) error {
	if err == nil {
		return nil
	}

	var target error
	switch {
	case errors.Is(err, mfsdav.ErrNotFound):
		target = os.ErrNotExist
	case errors.Is(err, mfsdav.ErrExists):
		target = os.ErrExist
	case errors.Is(err, mfsdav.ErrForbidden):
		target = os.ErrPermission
	case errors.Is(err, mfsdav.ErrInvalidArgument):
		target = os.ErrInvalid
	default:
		target = err
	}

	return &os.PathError{Op: op, Path: name, Err: target}
}
