package specification

import (
	"strings"

	"noet-be/internal/entity"
)

type Starred struct {
	Value bool
}

func (s Starred) IsSatisfiedBy(note *entity.Note) bool {
	return note.Starred == s.Value
}

type Archived struct {
	Value bool
}

func (s Archived) IsSatisfiedBy(note *entity.Note) bool {
	return note.Archived == s.Value
}

type Deleted struct {
	Value bool
}

func (s Deleted) IsSatisfiedBy(note *entity.Note) bool {
	return note.IsDeleted == s.Value
}

type ByNotebookID struct {
	NotebookID string
}

func (s ByNotebookID) IsSatisfiedBy(note *entity.Note) bool {
	return note.NotebookId != nil && *note.NotebookId == s.NotebookID
}

type ByFolderID struct {
	FolderID string
}

func (s ByFolderID) IsSatisfiedBy(note *entity.Note) bool {
	return note.FolderId != nil && *note.FolderId == s.FolderID
}

// ByTag matches a tag id, or the tag's name for notes tagged with free text.
type ByTag struct {
	TagID string
	Name  string
}

func (s ByTag) IsSatisfiedBy(note *entity.Note) bool {
	return note.HasTag(s.TagID, s.Name)
}

// SearchQuery is a case-insensitive substring match on title, content and tags.
type SearchQuery struct {
	Query string
}

func (s SearchQuery) IsSatisfiedBy(note *entity.Note) bool {
	q := strings.ToLower(strings.TrimSpace(s.Query))
	if q == "" {
		return true
	}
	if strings.Contains(strings.ToLower(note.Title), q) || strings.Contains(strings.ToLower(note.Content), q) {
		return true
	}
	for _, t := range note.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// TitleContains is a case-insensitive substring match on the title only.
type TitleContains struct {
	Term string
}

func (s TitleContains) IsSatisfiedBy(note *entity.Note) bool {
	return strings.Contains(strings.ToLower(note.Title), strings.ToLower(s.Term))
}
