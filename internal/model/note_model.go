package model

import "time"

// NoteMetadata is the content of <base>/<userId>/<noteId>/metadata.json.
// Content lives next to it in note.md.
type NoteMetadata struct {
	Id          string       `json:"id"`
	Title       string       `json:"title"`
	Tags        []string     `json:"tags"`
	Notebook    *string      `json:"notebook"`
	Folder      *string      `json:"folder"`
	Starred     bool         `json:"starred"`
	Archived    bool         `json:"archived"`
	Deleted     bool         `json:"deleted"`
	DeletedAt   *time.Time   `json:"deletedAt"`
	Created     time.Time    `json:"created"`
	Updated     time.Time    `json:"updated"`
	Version     int          `json:"version"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	Size         int64     `json:"size"`
	MimeType     string    `json:"mimeType"`
	Uploaded     time.Time `json:"uploaded"`
}

// ProtectedMetadataFields cannot be overwritten through a metadata patch.
var ProtectedMetadataFields = map[string]bool{
	"id":          true,
	"created":     true,
	"updated":     true,
	"version":     true,
	"attachments": true,
}
