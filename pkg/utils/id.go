package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a prefixed, globally unique identifier, e.g. "bid-<uuid>".
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
