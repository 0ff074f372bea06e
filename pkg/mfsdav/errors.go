package mfsdav

import (
	stderrors "errors"

	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/pkg/errors"
)

var (
	ErrNotFound        = stderrors.New("not found")
	ErrExists          = stderrors.New("already exists")
	ErrForbidden       = stderrors.New("forbidden")
	ErrInvalidArgument = stderrors.New("invalid argument")
	ErrGeneralFailure  = stderrors.New("general failure")
)

// classify maps an error coming back from the peer store onto the
// filesystem error taxonomy, keeping the original error as context.
func classify(err error, op, path string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, peer.ErrNotFound):
		return errors.Wrapf(ErrNotFound, "%s %s: %s", op, path, err)
	case stderrors.Is(err, peer.ErrExists):
		return errors.Wrapf(ErrExists, "%s %s: %s", op, path, err)
	default:
		return errors.Wrapf(ErrGeneralFailure, "%s %s: %s", op, path, err)
	}
}
