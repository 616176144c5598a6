package images

import "errors"

// ErrNotFound is returned by Get when no image is stored under the key.
var ErrNotFound = errors.New("image not found")
