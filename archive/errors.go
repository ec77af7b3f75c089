package archive

import "fmt"

var (
	// ErrNotFound is returned when a transcript for the given channel /
	// reply pair does not exist in the underlying store.
	ErrNotFound = fmt.Errorf("transcript not found")
)
