package domain

import "errors"

var (
	ErrNotFound = errors.New("not found")

	// ErrNetwork covers transport failures, timeouts and an open circuit.
	ErrNetwork = errors.New("reviews: network failure")
	// ErrRejected is any non-2xx answer from the reviews service.
	ErrRejected = errors.New("reviews: rejected by server")
	// ErrMalformed is a response or input that could not be interpreted.
	ErrMalformed = errors.New("reviews: malformed payload")

	ErrComposerBusy   = errors.New("composer: submission in progress")
	ErrComposerClosed = errors.New("composer: not open")
	ErrViewNotMounted = errors.New("view: not mounted")
)
