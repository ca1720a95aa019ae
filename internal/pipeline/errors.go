package pipeline

import "errors"

// ErrConfigInvalid marks configuration problems detected before any
// analysis begins: schema violations, unknown extension ids in transform
// blocks, incomplete severity mappings, unknown criticalities.
var ErrConfigInvalid = errors.New("invalid pipeline configuration")
