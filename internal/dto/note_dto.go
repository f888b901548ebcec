package dto

import (
	"encoding/json"
	"time"
)

type CreateNoteRequest struct {
	Title    string   `json:"title" validate:"max=500"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Notebook *string  `json:"notebook"`
	Folder   *string  `json:"folder"`
	Starred  bool     `json:"starred"`
	Archived bool     `json:"archived"`
}

// UpdateNoteRequest replaces content when given and shallow-merges metadata.
// Version, when given, must equal the stored version.
type UpdateNoteRequest struct {
	Content  *string                    `json:"content"`
	Metadata map[string]json.RawMessage `json:"metadata"`
	Version  *int                       `json:"version" validate:"omitempty,min=1"`
}

// ListNotesQuery holds the AND-combined listing filters. Nil booleans do not
// filter; Deleted nil means "not deleted".
type ListNotesQuery struct {
	Starred  *bool
	Archived *bool
	Deleted  *bool
	Since    *time.Time
	Search   string
	Tag      string
	Notebook string
	Folder   string
}

type AttachmentResponse struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	Uploaded     time.Time `json:"uploaded"`
}

type NoteMetadataResponse struct {
	Id          string               `json:"id"`
	Title       string               `json:"title"`
	Tags        []string             `json:"tags"`
	Notebook    *string              `json:"notebook"`
	Folder      *string              `json:"folder"`
	Starred     bool                 `json:"starred"`
	Archived    bool                 `json:"archived"`
	Deleted     bool                 `json:"deleted"`
	DeletedAt   *time.Time           `json:"deletedAt"`
	Created     time.Time            `json:"created"`
	Updated     time.Time            `json:"updated"`
	Version     int                  `json:"version"`
	Attachments []AttachmentResponse `json:"attachments"`
}

type NoteResponse struct {
	NoteMetadataResponse
	Content string `json:"content"`
}

type ExportedNote struct {
	Filename    string
	ContentType string
	Body        []byte
}
