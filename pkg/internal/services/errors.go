package services

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no identity was present where one is
	// required. The caller must re-authenticate; we never retry.
	ErrUnauthenticated = errors.New("no authenticated identity present")

	// ErrCallNotFound means the referenced call does not exist on the
	// video service.
	ErrCallNotFound = errors.New("call not found")

	// ErrCallForbidden means the identity is not on a restricted
	// call's member list.
	ErrCallForbidden = errors.New("not allowed to join this call")
)

// RemoteServiceError wraps a downstream failure from the video or
// identity service. Recovery is always user-initiated.
type RemoteServiceError struct {
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("remote %s error: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error {
	return e.Err
}
