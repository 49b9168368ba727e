package repositories

import "errors"

// Sentinel errors every repository maps its driver failures onto. Handlers
// translate them into 404 and 409 responses without inspecting pg codes.
var (
	ErrNotFound = errors.New("no matching record")
	ErrConflict = errors.New("duplicate record")
)
