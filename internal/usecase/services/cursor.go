package services

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
)

const defaultHistoryLimit = 20
const maxHistoryLimit = 100

// History cursors are an opaque encoding of the last row's (created_at, id)
// position, so paging stays stable while new transfers are inserted ahead of
// the reader.
func encodeCursor(createdAt time.Time, id string) string {
	if createdAt.IsZero() {
		return ""
	}
	raw := createdAt.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	if cursor == "" {
		return time.Time{}, "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", domain.ErrInvalidCursor
	}

	parts := strings.SplitN(string(raw), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, "", domain.ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return time.Time{}, "", domain.ErrInvalidCursor
	}

	return createdAt, parts[1], nil
}
