package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateID()
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestGenerateToken(t *testing.T) {
	token := GenerateToken()
	if !strings.HasPrefix(token, "sub0_") {
		t.Errorf("expected sub0_ prefix, got %s", token)
	}
	if token == GenerateToken() {
		t.Error("tokens should be unique")
	}
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]string{"status": "pending"}

	data, err := MarshalJSON(payload, false)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}
	if string(data) != `{"status":"pending"}` {
		t.Errorf("unexpected compact output: %s", data)
	}

	data, err = MarshalJSON(payload, true)
	if err != nil {
		t.Fatalf("failed to marshal indented: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"status\"") {
		t.Errorf("expected indented output, got %s", data)
	}

	if _, err := MarshalJSON(make(chan int), false); err == nil {
		t.Error("expected error for unmarshalable value")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{5, "0:05"},
		{59, "0:59"},
		{60, "1:00"},
		{184, "3:04"},
		{3600, "60:00"},
	}

	for _, tc := range tests {
		if got := FormatDuration(tc.seconds); got != tc.want {
			t.Errorf("FormatDuration(%d) = %s, want %s", tc.seconds, got, tc.want)
		}
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf)
	logger.Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("expected log output to contain message, got %q", buf.String())
	}

	if NewLogger(nil) == nil {
		t.Error("nil writer should fall back to stderr logger")
	}
}
