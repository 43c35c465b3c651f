// package formatter provides functions to export submission digests and track listings to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/iamankun/studio-sub000/internal/tasks"
)

// DigestToCSV converts a digest to CSV with columns: ID, Title, Artist, Genre, Status, Submitted, ReleaseDate, Version
func DigestToCSV(digest *tasks.DigestResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Genre", "Status", "Submitted", "ReleaseDate", "Version"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sub := range digest.Submissions {
		releaseDate := ""
		if !sub.RequestedReleaseDate().IsZero() {
			releaseDate = sub.RequestedReleaseDate().Format("2006-01-02")
		}
		record := []string{
			sub.ID(),
			sub.Title(),
			sub.ArtistName(),
			sub.Genre(),
			string(sub.Status()),
			sub.SubmittedAt().Format("2006-01-02"),
			releaseDate,
			strconv.Itoa(sub.Version()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DigestToMarkdown converts a digest to Markdown with a summary section and a submission table
func DigestToMarkdown(digest *tasks.DigestResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Submission Digest\n\n")
	buf.WriteString(fmt.Sprintf("**Generated**: %s\n", digest.GeneratedAt.Format("2006-01-02 15:04")))
	buf.WriteString(fmt.Sprintf("**Submissions**: %d\n", digest.Summary.Total))
	if digest.Summary.DistinctOwners > 0 {
		buf.WriteString(fmt.Sprintf("**Artists**: %d\n", digest.Summary.DistinctOwners))
	}
	buf.WriteString("\n## Status\n\n")

	for _, status := range models.AllStatuses() {
		if count := digest.Summary.StatusCounts[status]; count > 0 {
			buf.WriteString(fmt.Sprintf("- %s: %d\n", status, count))
		}
	}

	buf.WriteString("\n## Submissions\n\n")
	for i, sub := range digest.Submissions {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, sub.ArtistName(), sub.Title(), sub.Status()))
	}

	return buf.Bytes(), nil
}

// DigestToText converts a digest to plain text format
func DigestToText(digest *tasks.DigestResult) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Submission digest (%s)\n", digest.GeneratedAt.Format("2006-01-02 15:04")))
	buf.WriteString(fmt.Sprintf("Submissions: %d\n\n", digest.Summary.Total))

	for i, sub := range digest.Submissions {
		buf.WriteString(fmt.Sprintf("%d. %s - %s [%s]\n", i+1, sub.ArtistName(), sub.Title(), sub.Status()))
	}

	return buf.Bytes(), nil
}

// TracksToCSV converts a track listing to CSV with columns: ID, Title, ArtistCredit, ISRC, Duration
func TracksToCSV(tracks []*models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "ArtistCredit", "ISRC", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			track.ID(),
			track.Title(),
			track.ArtistCredit(),
			track.ISRC(),
			shared.FormatDuration(track.DurationSeconds()),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// digestJSON is the serialized shape of a digest export.
type digestJSON struct {
	GeneratedAt string         `json:"generated_at"`
	Total       int            `json:"total"`
	Owners      int            `json:"distinct_owners,omitempty"`
	Statuses    map[string]int   `json:"status_counts"`
	Submissions []map[string]any `json:"submissions"`
}

// DigestToJSON generates an indented JSON representation of a digest.
func DigestToJSON(digest *tasks.DigestResult) ([]byte, error) {
	payload := digestJSON{
		GeneratedAt: digest.GeneratedAt.Format("2006-01-02T15:04:05Z07:00"),
		Total:       digest.Summary.Total,
		Owners:      digest.Summary.DistinctOwners,
		Statuses:    make(map[string]int),
	}
	for status, count := range digest.Summary.StatusCounts {
		payload.Statuses[string(status)] = count
	}
	for _, sub := range digest.Submissions {
		payload.Submissions = append(payload.Submissions, map[string]any{
			"id":           sub.ID(),
			"title":        sub.Title(),
			"artist_name":  sub.ArtistName(),
			"genre":        sub.Genre(),
			"status":       string(sub.Status()),
			"submitted_at": sub.SubmittedAt().Format("2006-01-02"),
			"version":      sub.Version(),
		})
	}
	return shared.MarshalJSON(payload, true)
}

// WriteDigest renders a digest in the requested format and writes it to path.
//
// Formats: csv, markdown, txt; anything else falls back to JSON.
func WriteDigest(digest *tasks.DigestResult, format, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		if path == "" {
			path = "digest.csv"
		}
		data, err = DigestToCSV(digest)
	case "markdown":
		if path == "" {
			path = "digest.md"
		}
		data, err = DigestToMarkdown(digest)
	case "txt":
		if path == "" {
			path = "digest.txt"
		}
		data, err = DigestToText(digest)
	default:
		if path == "" {
			path = "digest.json"
		}
		data, err = DigestToJSON(digest)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate digest: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write digest file: %w", err)
	}

	return path, nil
}
