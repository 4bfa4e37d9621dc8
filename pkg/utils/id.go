package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID creates a prefixed identifier, e.g. "auction-6f1c...".
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
