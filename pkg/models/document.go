package models

import (
	"time"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/google/uuid"
)

// DocumentStatus tracks a document through the analysis pipeline
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusCompleted  DocumentStatus = "completed"
	DocumentStatusError      DocumentStatus = "error"
)

// Document is the metadata record for an uploaded business document.
// The file bytes themselves live in external storage; this service only
// tracks status and the extracted business profile.
type Document struct {
	ID              uuid.UUID                       `db:"id" json:"id"`
	TenantID        string                          `db:"tenant_id" json:"tenant_id"`
	Filename        string                          `db:"filename" json:"filename" validate:"required"`
	FileType        string                          `db:"file_type" json:"file_type"`
	FileSize        int64                           `db:"file_size" json:"file_size"`
	Status          DocumentStatus                  `db:"status" json:"status"`
	BusinessProfile database.JSONB[BusinessProfile] `db:"business_profile" json:"business_profile"`
	ErrorMessage    string                          `db:"error_message" json:"error_message,omitempty"`
	CreatedAt       time.Time                       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time                       `db:"updated_at" json:"updated_at"`
}
