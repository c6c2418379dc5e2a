package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Cursor is the opaque pagination state we encode/decode.
// ID is the tie-breaker of the listing (actor id for liker lists, match id
// for match lists); UpdatedUnix is the sort timestamp in millis.
type Cursor struct {
	ID          uint64 `json:"id"`
	UpdatedUnix int64  `json:"updated_unix,omitempty"`
}

// IsZero reports whether c points at the first page.
func (c Cursor) IsZero() bool {
	return c.ID == 0 || c.UpdatedUnix == 0
}

// Time returns the cursor timestamp.
func (c Cursor) Time() time.Time {
	return time.UnixMilli(c.UpdatedUnix).UTC()
}

// After builds the cursor that resumes after a row.
func After(id uint64, updated time.Time) Cursor {
	return Cursor{ID: id, UpdatedUnix: updated.UnixMilli()}
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token")
	}
	return c, nil
}
