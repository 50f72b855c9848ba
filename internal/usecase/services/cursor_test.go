package services

import (
	"errors"
	"testing"
	"time"

	"github.com/api-sage/banking-ledger/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 9, 26, 53, 589793238, time.UTC)
	cursor := encodeCursor(createdAt, "tr-42")
	if cursor == "" {
		t.Fatal("expected a non-empty cursor")
	}

	gotTime, gotID, err := decodeCursor(cursor)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !gotTime.Equal(createdAt) {
		t.Fatalf("expected %v, got %v", createdAt, gotTime)
	}
	if gotID != "tr-42" {
		t.Fatalf("expected tr-42, got %s", gotID)
	}
}

func TestCursorEmptyMeansFirstPage(t *testing.T) {
	if got := encodeCursor(time.Time{}, "ignored"); got != "" {
		t.Fatalf("zero position must encode to the empty cursor, got %q", got)
	}

	gotTime, gotID, err := decodeCursor("")
	if err != nil || !gotTime.IsZero() || gotID != "" {
		t.Fatalf("empty cursor must decode to the zero position, got %v %q %v", gotTime, gotID, err)
	}
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, cursor := range []string{"!!!", "bm8gc2VwYXJhdG9y", "bm90YXRpbWV8dHItMQ"} {
		if _, _, err := decodeCursor(cursor); !errors.Is(err, domain.ErrInvalidCursor) {
			t.Fatalf("cursor %q: expected ErrInvalidCursor, got %v", cursor, err)
		}
	}
}
