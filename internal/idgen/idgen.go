// Package idgen provides short, URL-safe unique ID generation backed by nanoid.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the entity families tracked by the engine.
const (
	RequestPrefix        = "req-"
	CorrespondencePrefix = "cor-"
	VerificationPrefix   = "ver-"
)

// Alphabet defines the character set used for the random portion of the ID.
var Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Length is the number of random characters generated (excluding the prefix).
var Length = 10

// Request returns a new unique request ID.
func Request() (string, error) {
	return generate(RequestPrefix)
}

// Correspondence returns a new unique correspondence item ID.
func Correspondence() (string, error) {
	return generate(CorrespondencePrefix)
}

// Verification returns a new unique verification result ID.
func Verification() (string, error) {
	return generate(VerificationPrefix)
}

func generate(prefix string) (string, error) {
	id, err := nanoid.Generate(Alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}
