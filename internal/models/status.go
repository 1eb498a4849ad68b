package models

// IngestStage is a state of the ingestion pipeline for one document.
// Transitions: pending -> chunking -> embedding -> indexed, with failed
// reachable from any non-terminal stage.
type IngestStage string

const (
	StagePending   IngestStage = "pending"
	StageChunking  IngestStage = "chunking"
	StageEmbedding IngestStage = "embedding"
	StageIndexed   IngestStage = "indexed"
	StageFailed    IngestStage = "failed"
)

// Terminal reports whether the stage is a terminal state.
func (s IngestStage) Terminal() bool {
	return s == StageIndexed || s == StageFailed
}

// StatusUpdate is one progress report on an ingestion status stream.
type StatusUpdate struct {
	DocumentID string      `json:"document_id"`
	Stage      IngestStage `json:"stage"`
	// ChunksTotal and ChunksEmbedded report embedding progress; zero until
	// chunking completes.
	ChunksTotal    int `json:"chunks_total,omitempty"`
	ChunksEmbedded int `json:"chunks_embedded,omitempty"`
	// Error carries the failure detail when Stage is failed.
	Error string `json:"error,omitempty"`
}
