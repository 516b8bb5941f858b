// Package apikeys hands map API keys to the frontend in a lightly obfuscated
// form: the key is base64-encoded repeatedly, with the round count derived
// from the current hour, so a pasted blob goes stale within the hour.
package apikeys

import (
	"encoding/base64"
	"errors"
	"fmt"
	"math/rand"
	"time"
)

// ErrNoKeys is returned when the configured key pool is empty.
var ErrNoKeys = errors.New("no api keys configured")

// rounds maps a wall-clock instant to the encoding round count: the hour on
// a 12-hour dial, so midnight and noon both count as 12.
func rounds(now time.Time) int {
	h := now.Hour() % 12
	if h == 0 {
		h = 12
	}
	return h
}

// Obfuscate picks one key from the pool at random and wraps it in the
// current hour's number of base64 rounds.
func Obfuscate(keys []string, now time.Time) (string, error) {
	if len(keys) == 0 {
		return "", ErrNoKeys
	}
	blob := []byte(keys[rand.Intn(len(keys))])
	for i := 0; i < rounds(now); i++ {
		blob = []byte(base64.StdEncoding.EncodeToString(blob))
	}
	return string(blob), nil
}

// Decode unwraps a blob produced by Obfuscate within the same hour.
func Decode(blob string, now time.Time) (string, error) {
	out := []byte(blob)
	for i := 0; i < rounds(now); i++ {
		decoded, err := base64.StdEncoding.DecodeString(string(out))
		if err != nil {
			return "", fmt.Errorf("decode round %d: %w", i+1, err)
		}
		out = decoded
	}
	return string(out), nil
}
