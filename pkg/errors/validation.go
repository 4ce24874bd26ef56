package errors

import (
	"strings"
	"unicode"
)

const (
	maxTileIDLength = 64
	maxTitleLength  = 120
)

// ValidateTileID validates a tile identifier supplied by a client.
// IDs travel in URL paths and cache keys, so the rules are conservative:
//   - No empty IDs
//   - No control characters or whitespace
//   - No path separators
//   - Maximum length of 64 characters
func ValidateTileID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidTile, "tile id cannot be empty")
	}
	if len(id) > maxTileIDLength {
		return New(ErrCodeInvalidTile, "tile id too long (max %d characters)", maxTileIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidTile, "tile id contains invalid characters")
		}
	}
	if strings.ContainsAny(id, "/\\") {
		return New(ErrCodeInvalidTile, "tile id cannot contain path separators")
	}
	return nil
}

// ValidateTitle validates a tile display title.
// Titles are cosmetic; only length and control characters are checked.
func ValidateTitle(title string) error {
	if len(title) > maxTitleLength {
		return New(ErrCodeInvalidTile, "title too long (max %d characters)", maxTitleLength)
	}
	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidTile, "title contains invalid control characters")
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has an http(s) or ws(s) scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	for _, scheme := range []string{"http://", "https://", "ws://", "wss://"} {
		if strings.HasPrefix(rawURL, scheme) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use http, https, ws or wss scheme")
}
