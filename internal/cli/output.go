// Package cli provides output helpers for the localrag command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/debarghya18/localrag/internal/models"
	"github.com/debarghya18/localrag/pkg/utils"
)

// OutputFormat selects how results are rendered.
type OutputFormat string

const (
	// FormatText is human-readable text (default).
	FormatText OutputFormat = "text"
	// FormatJSON is structured JSON for machine consumption.
	FormatJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "json":
		return FormatJSON, nil
	case "text", "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

// WriteRetrievalResult writes a query result to w in the given format.
func WriteRetrievalResult(w io.Writer, result *models.RetrievalResult, format OutputFormat) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
	writeRetrievalText(w, result)
	return nil
}

func writeRetrievalText(w io.Writer, result *models.RetrievalResult) {
	cached := ""
	if result.Cached {
		cached = " (cached)"
	}
	fmt.Fprintf(w, "\nFound %d chunks from %d candidates in %dms%s\n\n",
		len(result.Chunks), result.CandidatesFound, result.QueryTimeMillis, cached)
	for _, sc := range result.Chunks {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Rank: %d | Score: %.4f\n", sc.Rank, sc.Score)
		fmt.Fprintf(w, "Chunk: %s (document %s, span %d-%d)\n",
			sc.Chunk.ID, sc.Chunk.DocumentID, sc.Chunk.Start, sc.Chunk.End)
		if len(sc.Chunk.Keywords) > 0 {
			fmt.Fprintf(w, "Keywords: %v\n", sc.Chunk.Keywords)
		}
		fmt.Fprintf(w, "\n%s\n\n", utils.Truncate(sc.Chunk.Text, 300))
	}
}

// WriteStatusUpdates renders an ingest status stream, one line per stage.
// It returns the final update so callers can inspect the terminal stage.
func WriteStatusUpdates(w io.Writer, updates <-chan models.StatusUpdate) models.StatusUpdate {
	var last models.StatusUpdate
	for u := range updates {
		last = u
		switch u.Stage {
		case models.StageEmbedding:
			fmt.Fprintf(w, "%s: %s (%d chunks)\n", u.DocumentID, u.Stage, u.ChunksTotal)
		case models.StageIndexed:
			fmt.Fprintf(w, "%s: %s (%d chunks embedded)\n", u.DocumentID, u.Stage, u.ChunksEmbedded)
		case models.StageFailed:
			fmt.Fprintf(w, "%s: %s: %s\n", u.DocumentID, u.Stage, u.Error)
		default:
			fmt.Fprintf(w, "%s: %s\n", u.DocumentID, u.Stage)
		}
	}
	return last
}
