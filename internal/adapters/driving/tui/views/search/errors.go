package search

import "errors"

// ErrNoNodeService indicates that no node service was provided.
var ErrNoNodeService = errors.New("node service is required")
