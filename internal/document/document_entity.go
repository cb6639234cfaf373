package document

import (
	"time"

	"github.com/google/uuid"
)

// Document is a stored compensation-letter blob. Rows are immutable once
// written; periods reference them by URL.
type Document struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CompanyID uuid.UUID `gorm:"type:uuid;index"`
	Name      string
	MIME      string
	Data      []byte
	Size      int64
	CreatedAt time.Time
}

// StoredDocument is the reference handed back to callers after an upload.
// Downstream code stores the URL, never the raw bytes.
type StoredDocument struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	MIME string `json:"mime_type"`
	URL  string `json:"url"`
}
