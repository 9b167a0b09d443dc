package store

import (
	"fmt"

	"github.com/hupe1980/wcpairing/core"
)

var (
	// ErrNotFound is returned when no pairing is stored for a topic. It
	// wraps core.ErrUnknownTopic.
	ErrNotFound = fmt.Errorf("pairing not found: %w", core.ErrUnknownTopic)
)
