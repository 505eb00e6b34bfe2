package domain

import "time"

type HandbookStatus string

const (
	HandbookUploaded HandbookStatus = "uploaded"
	HandbookIndexing HandbookStatus = "indexing"
	HandbookIndexed  HandbookStatus = "indexed"
	HandbookFailed   HandbookStatus = "failed"
)

// HandbookDocument is an uploaded policy handbook. Each upload gets its own
// search index so stale policy text never bleeds into new assessments.
type HandbookDocument struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	StoragePath string         `json:"storage_path"`
	IndexName   string         `json:"index_name"`
	ChunkCount  int            `json:"chunk_count,omitempty"`
	Status      HandbookStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// HandbookChunk is one indexable span of handbook text with its provenance.
type HandbookChunk struct {
	Content string `json:"content"`
	Section string `json:"section,omitempty"`
	Page    string `json:"page,omitempty"`
}
