package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns prefix-<uuid>, e.g. "TRX-3f0c...". Prefixes in use: STK,
// MNU, PRM, TRX.
func NewID(prefix string) string {
	id := uuid.NewString()
	if prefix == "" {
		return id
	}
	return strings.ToUpper(prefix) + "-" + id
}
