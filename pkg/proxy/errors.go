package proxy

import "errors"

var (
	// ErrDiscoveryUnavailable means the remote descriptor could not be fetched or accepted.
	// No TaskRequest was sent.
	ErrDiscoveryUnavailable = errors.New("discovery unavailable")
	// ErrAuthenticationRejected means the remote agent refused the shared secret.
	// The remote produced no TaskResult.
	ErrAuthenticationRejected = errors.New("authentication rejected")
)
