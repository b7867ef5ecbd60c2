// internal/pkg/objectid/objectid.go

// Package objectid issues and validates the 24-hex-character document ids used by every storage driver.
package objectid

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// New returns a fresh id in hex form
func New() string {
	return primitive.NewObjectID().Hex()
}

// Valid reports whether s is a well-formed id
func Valid(s string) bool {
	return primitive.IsValidObjectID(s)
}

// Normalize lowercases and validates an id received from a client
func Normalize(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if !Valid(s) {
		return "", false
	}
	return s, true
}
