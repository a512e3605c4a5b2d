package tui

import "errors"

// ErrMissingGraphService is returned when the graph service is not provided.
var ErrMissingGraphService = errors.New("tui: graph service is required")

// ErrMissingNodeService is returned when the node service is not provided.
var ErrMissingNodeService = errors.New("tui: node service is required")
