package placement

import "errors"

// ErrOutOfBounds indicates a placement that does not fit its container.
var ErrOutOfBounds = errors.New("placement out of bounds")
