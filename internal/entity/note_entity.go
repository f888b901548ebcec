package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultNoteTitle = "Untitled Note"

type Note struct {
	Id          uuid.UUID
	UserId      string
	Title       string
	Content     string
	Tags        []string
	NotebookId  *string
	FolderId    *string
	Starred     bool
	Archived    bool
	IsDeleted   bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Version     int
	Attachments []Attachment
}

type Attachment struct {
	Filename     string
	OriginalName string
	Size         int64
	MimeType     string
	UploadedAt   time.Time
}

// HasTag matches either a tag id or a free-text tag name.
func (n *Note) HasTag(id, name string) bool {
	for _, t := range n.Tags {
		if t == id || (name != "" && t == name) {
			return true
		}
	}
	return false
}

func (n *Note) FindAttachment(filename string) (int, *Attachment) {
	for i := range n.Attachments {
		if n.Attachments[i].Filename == filename {
			return i, &n.Attachments[i]
		}
	}
	return -1, nil
}
