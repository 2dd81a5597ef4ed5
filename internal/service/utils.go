package service

import (
	"strings"

	"github.com/google/uuid"
)

// newID builds a prefixed ledger identifier, e.g. "ORD3F2A9C7D41B8".
func newID(prefix string) string {
	raw := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return prefix + raw[:12]
}
