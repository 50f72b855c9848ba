package logger

import "testing"

func TestSanitizePayloadMasksAccountNumbers(t *testing.T) {
	payload := map[string]any{
		"accountNumber": "1234567890",
		"amount":        "25.00",
	}

	sanitized, ok := SanitizePayload(payload).(map[string]any)
	if !ok {
		t.Fatalf("expected a map, got %T", SanitizePayload(payload))
	}

	if got := sanitized["accountNumber"]; got != "******7890" {
		t.Fatalf("expected masked account number, got %v", got)
	}
	if got := sanitized["amount"]; got != "25.00" {
		t.Fatalf("expected amount to pass through, got %v", got)
	}
}

func TestSanitizePayloadMasksNestedAndShortValues(t *testing.T) {
	payload := map[string]any{
		"accounts": []any{
			map[string]any{"account_number": "42"},
		},
	}

	sanitized := SanitizePayload(payload).(map[string]any)
	inner := sanitized["accounts"].([]any)[0].(map[string]any)
	if got := inner["account_number"]; got != "******" {
		t.Fatalf("short values must be fully masked, got %v", got)
	}
}
