package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a new unique identifier string
func GenerateID() string {
	return uuid.New().String()
}

// CanonicalID lowercases and normalises a UUID given in any accepted form
// (braces, urn prefix, upper case). Anything that is not a UUID is returned as is.
func CanonicalID(id string) string {
	u, err := uuid.Parse(id)
	if err != nil {
		return id
	}
	return u.String()
}
