package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ToCamelCase converts snake_case names ("tfa_code") to camelCase ("tfaCode").
// Dotted paths are converted segment by segment.
func ToCamelCase(s string) string {
	segments := strings.Split(s, ".")
	for i, segment := range segments {
		parts := strings.Split(segment, "_")
		for j := 1; j < len(parts); j++ {
			if parts[j] == "" {
				continue
			}
			runes := []rune(parts[j])
			runes[0] = unicode.ToUpper(runes[0])
			parts[j] = string(runes)
		}
		segments[i] = strings.Join(parts, "")
	}
	return strings.Join(segments, ".")
}

// UniqueID returns a url-safe random identifier of the given length built from uuid4 bytes.
func UniqueID(length int) string {
	var b strings.Builder
	for b.Len() < length {
		id := uuid.New()
		b.WriteString(base64.RawURLEncoding.EncodeToString(id[:]))
	}
	return b.String()[:length]
}

// RandomString returns a random url-safe string of the given length.
func RandomString(length int) string {
	buf := make([]byte, length)
	_, _ = rand.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)[:length]
}
