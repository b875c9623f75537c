package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	apiKeyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	apiKeyLength   = 32
)

// GenerateAPIKey returns a random alphanumeric key.
func GenerateAPIKey() (string, error) {
	return gonanoid.Generate(apiKeyAlphabet, apiKeyLength)
}
