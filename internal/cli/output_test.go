package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/debarghya18/localrag/internal/models"
)

func sampleResult() *models.RetrievalResult {
	return &models.RetrievalResult{
		Query: "test query",
		Chunks: []*models.ScoredChunk{
			{
				Chunk: &models.Chunk{
					ID:         "doc1_0_abcd1234",
					DocumentID: "doc1",
					Index:      0,
					Text:       "Relevant chunk content",
					Start:      0,
					End:        22,
					Keywords:   []string{"relevant", "chunk"},
				},
				Score: 0.91,
				Rank:  1,
			},
		},
		CandidatesFound: 4,
		QueryTimeMillis: 12,
	}
}

func TestWriteRetrievalResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), FormatJSON); err != nil {
		t.Fatalf("WriteRetrievalResult(json): %v", err)
	}
	var decoded models.RetrievalResult
	if err := json.NewDecoder(&buf).Decode(&decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Query != "test query" || len(decoded.Chunks) != 1 {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Chunks[0].Chunk.ID != "doc1_0_abcd1234" {
		t.Errorf("chunk id = %q", decoded.Chunks[0].Chunk.ID)
	}
}

func TestWriteRetrievalResult_text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, sampleResult(), FormatText); err != nil {
		t.Fatalf("WriteRetrievalResult(text): %v", err)
	}
	out := buf.String()
	for _, sub := range []string{"Found 1 chunks", "4 candidates", "12ms", "Rank: 1", "0.9100", "doc1", "Relevant chunk content"} {
		if !strings.Contains(out, sub) {
			t.Errorf("text output missing %q:\n%s", sub, out)
		}
	}
}

func TestWriteRetrievalResult_cachedMarker(t *testing.T) {
	result := sampleResult()
	result.Cached = true
	var buf bytes.Buffer
	if err := WriteRetrievalResult(&buf, result, FormatText); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "(cached)") {
		t.Errorf("expected cached marker:\n%s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("json: %v %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatText {
		t.Errorf("empty: %v %v", f, err)
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Error("unknown format should error")
	}
}

func TestWriteStatusUpdates(t *testing.T) {
	updates := make(chan models.StatusUpdate, 4)
	updates <- models.StatusUpdate{DocumentID: "d1", Stage: models.StagePending}
	updates <- models.StatusUpdate{DocumentID: "d1", Stage: models.StageChunking}
	updates <- models.StatusUpdate{DocumentID: "d1", Stage: models.StageEmbedding, ChunksTotal: 3}
	updates <- models.StatusUpdate{DocumentID: "d1", Stage: models.StageIndexed, ChunksTotal: 3, ChunksEmbedded: 3}
	close(updates)

	var buf bytes.Buffer
	last := WriteStatusUpdates(&buf, updates)
	if last.Stage != models.StageIndexed {
		t.Errorf("last stage = %s", last.Stage)
	}
	out := buf.String()
	for _, sub := range []string{"pending", "chunking", "embedding (3 chunks)", "indexed (3 chunks embedded)"} {
		if !strings.Contains(out, sub) {
			t.Errorf("output missing %q:\n%s", sub, out)
		}
	}
}
