package surface

import "fmt"

var (
	// ErrNotFound is returned when a message id does not exist on the
	// surface.
	ErrNotFound = fmt.Errorf("message not found")
)
