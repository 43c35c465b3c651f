package main

import (
	"bytes"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	tu "github.com/iamankun/studio-sub000/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) != 7 {
			t.Errorf("expected 7 commands, got %d", len(commands))
		}

		names := map[string]bool{}
		for _, cmd := range commands {
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "user", "submission", "review", "isrc", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})
}

func TestParseTrackSpec(t *testing.T) {
	t.Run("full spec", func(t *testing.T) {
		draft, err := parseTrackSpec("First Light|Aria Vo|184|audio/first-light.wav")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if draft.Title != "First Light" {
			t.Errorf("expected title, got %q", draft.Title)
		}
		if draft.ArtistCredit != "Aria Vo" {
			t.Errorf("expected artist credit, got %q", draft.ArtistCredit)
		}
		if draft.DurationSeconds != 184 {
			t.Errorf("expected duration 184, got %d", draft.DurationSeconds)
		}
		if draft.FileRef != "audio/first-light.wav" {
			t.Errorf("expected file ref, got %q", draft.FileRef)
		}
	})

	t.Run("title only", func(t *testing.T) {
		draft, err := parseTrackSpec("Second Sight")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if draft.Title != "Second Sight" {
			t.Errorf("expected title, got %q", draft.Title)
		}
		if draft.ArtistCredit != "" || draft.DurationSeconds != 0 {
			t.Error("expected remaining fields to be zero")
		}
	})

	t.Run("empty duration field is skipped", func(t *testing.T) {
		draft, err := parseTrackSpec("Interlude|Aria Vo||audio/interlude.wav")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if draft.DurationSeconds != 0 {
			t.Errorf("expected zero duration, got %d", draft.DurationSeconds)
		}
		if draft.FileRef != "audio/interlude.wav" {
			t.Errorf("expected file ref, got %q", draft.FileRef)
		}
	})

	t.Run("missing title", func(t *testing.T) {
		if _, err := parseTrackSpec("|Aria Vo"); err == nil {
			t.Fatal("expected error for spec without a title")
		}
	})

	t.Run("non-numeric duration", func(t *testing.T) {
		if _, err := parseTrackSpec("Song|Artist|long"); err == nil {
			t.Fatal("expected error for non-numeric duration")
		}
	})
}

func TestParseDate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		date, err := parseDate("2026-03-01")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if date.Year() != 2026 || date.Month() != time.March || date.Day() != 1 {
			t.Errorf("unexpected date %v", date)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := parseDate("03/01/2026"); err == nil {
			t.Fatal("expected error for non-ISO date")
		}
	})
}

func TestSubmissionJSON(t *testing.T) {
	sub := models.NewSubmission(1, "owner-1", "First Light", "Aria Vo")
	sub.SetID("sub-1")
	sub.SetGenre("Pop")
	sub.SetSubmittedAt(time.Now())

	payload := submissionJSON(sub)

	if payload["id"] != "sub-1" {
		t.Errorf("expected id, got %v", payload["id"])
	}
	if payload["status"] != models.StatusPending {
		t.Errorf("expected pending status, got %v", payload["status"])
	}
	if _, ok := payload["rejection_reason"]; ok {
		t.Error("expected no rejection reason on a fresh submission")
	}
	if _, ok := payload["requested_release_date"]; ok {
		t.Error("expected no release date when unset")
	}

	sub.SetRejectionReason("missing cover art")
	sub.SetRequestedReleaseDate(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC))
	payload = submissionJSON(sub)

	if payload["rejection_reason"] != "missing cover art" {
		t.Errorf("expected rejection reason, got %v", payload["rejection_reason"])
	}
	if payload["requested_release_date"] != "2026-03-01" {
		t.Errorf("expected release date, got %v", payload["requested_release_date"])
	}
}
