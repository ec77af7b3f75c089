package responder

import "fmt"

var (
	// ErrNotInitialized is returned when Shutdown is called before
	// Initialize has opened the first output message.
	ErrNotInitialized = fmt.Errorf("responder not initialized")

	// ErrAlreadyInitialized is returned when Initialize is called twice on
	// the same responder. A responder handles exactly one reply.
	ErrAlreadyInitialized = fmt.Errorf("responder already initialized")

	// ErrMalformedFragment is returned by Push for fragments that are not
	// valid UTF-8. Rejection happens before the fragment enters the
	// transcript, so already-flushed content is never corrupted.
	ErrMalformedFragment = fmt.Errorf("malformed fragment")
)
