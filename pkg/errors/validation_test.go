package errors

import (
	"strings"
	"testing"
)

func TestValidateTileID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "chart-1", false},
		{"uuid", "6f1c8f62-2b1f-4a5e-9f51-0d8f3b5b9c11", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 65), true},
		{"space", "chart 1", true},
		{"control", "chart\x00", true},
		{"slash", "charts/1", true},
		{"backslash", `charts\1`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTileID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTileID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidTile) {
				t.Errorf("ValidateTileID(%q) code = %v, want %v", tt.id, GetCode(err), ErrCodeInvalidTile)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Core Web Vitals"); err != nil {
		t.Errorf("ValidateTitle() unexpected error: %v", err)
	}
	if err := ValidateTitle(""); err != nil {
		t.Errorf("ValidateTitle(empty) unexpected error: %v", err)
	}
	if err := ValidateTitle(strings.Repeat("x", 121)); err == nil {
		t.Error("ValidateTitle(too long) expected error")
	}
	if err := ValidateTitle("bad\ttitle"); err == nil {
		t.Error("ValidateTitle(control) expected error")
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://api.coingecko.com/api/v3", false},
		{"http://localhost:8080", false},
		{"ws://localhost:8080/ws/feed", false},
		{"wss://example.com/ws/feed", false},
		{"", true},
		{"ftp://example.com", true},
		{"localhost:8080", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if err := ValidateURL(tt.url); (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
