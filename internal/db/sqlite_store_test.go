package db

import (
	"database/sql"
	"testing"
	"time"
)

func TestParseTimeRoundTrip(t *testing.T) {
	at := time.Date(2025, 9, 17, 8, 30, 0, 0, time.UTC)
	got, err := parseTime(formatTime(at))
	if err != nil {
		t.Fatalf("parseTime: %v", err)
	}
	if !got.Equal(at) {
		t.Fatalf("round trip = %v, want %v", got, at)
	}
}

func TestParseTimeRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "not-a-time", "2025-13-45"} {
		if _, err := parseTime(raw); err == nil {
			t.Fatalf("parseTime(%q) accepted malformed input", raw)
		}
	}
}

func TestFromNullTime(t *testing.T) {
	got, err := fromNullTime(sql.NullString{})
	if err != nil || got != nil {
		t.Fatalf("null value = %v, %v, want nil, nil", got, err)
	}

	at := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	got, err = fromNullTime(toNullTime(&at))
	if err != nil {
		t.Fatalf("fromNullTime: %v", err)
	}
	if got == nil || !got.Equal(at) {
		t.Fatalf("round trip = %v, want %v", got, at)
	}

	if _, err := fromNullTime(sql.NullString{String: "garbage", Valid: true}); err == nil {
		t.Fatal("fromNullTime accepted malformed timestamp")
	}
}
