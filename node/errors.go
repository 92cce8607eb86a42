package node

import "errors"

var (
	// ErrPeerDidNotRespond is returned by doUpload/doDownload when an
	// outbound send fails or times out.
	ErrPeerDidNotRespond = errors.New("peer did not respond")

	// ErrIntegrityCheckFailed is returned by doDownload when a downloaded
	// blob does not hash to the requested tag. The blob is always
	// discarded, never cached.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")

	// ErrMisbehavior names the class of protocol-precondition violations: a
	// locate redirect that isn't strictly closer, a greet id mismatch, or a
	// discover response outside the requested level. Such violations are
	// recorded in the misbehavior log and abort the current operation; no
	// code path returns or wraps this value.
	ErrMisbehavior = errors.New("peer misbehavior")
)
