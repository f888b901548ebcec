package mapper

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"noet-be/internal/entity"
	"noet-be/internal/model"

	"github.com/google/uuid"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

// ToEntity joins metadata with the separately stored content.
func (m *NoteMapper) ToEntity(userId string, n *model.NoteMetadata, content string) (*entity.Note, error) {
	if n == nil {
		return nil, nil
	}

	id, err := uuid.Parse(n.Id)
	if err != nil {
		return nil, fmt.Errorf("metadata id %q: %w", n.Id, err)
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	attachments := make([]entity.Attachment, len(n.Attachments))
	for i, a := range n.Attachments {
		attachments[i] = entity.Attachment{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			Size:         a.Size,
			MimeType:     a.MimeType,
			UploadedAt:   a.Uploaded,
		}
	}

	return &entity.Note{
		Id:          id,
		UserId:      userId,
		Title:       n.Title,
		Content:     content,
		Tags:        tags,
		NotebookId:  n.Notebook,
		FolderId:    n.Folder,
		Starred:     n.Starred,
		Archived:    n.Archived,
		IsDeleted:   n.Deleted,
		DeletedAt:   n.DeletedAt,
		CreatedAt:   n.Created,
		UpdatedAt:   n.Updated,
		Version:     n.Version,
		Attachments: attachments,
	}, nil
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.NoteMetadata {
	if n == nil {
		return nil
	}

	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}

	attachments := make([]model.Attachment, len(n.Attachments))
	for i, a := range n.Attachments {
		attachments[i] = model.Attachment{
			Filename:     a.Filename,
			OriginalName: a.OriginalName,
			Size:         a.Size,
			MimeType:     a.MimeType,
			Uploaded:     a.UploadedAt,
		}
	}

	return &model.NoteMetadata{
		Id:          n.Id.String(),
		Title:       n.Title,
		Tags:        tags,
		Notebook:    n.NotebookId,
		Folder:      n.FolderId,
		Starred:     n.Starred,
		Archived:    n.Archived,
		Deleted:     n.IsDeleted,
		DeletedAt:   n.DeletedAt,
		Created:     n.CreatedAt,
		Updated:     n.UpdatedAt,
		Version:     n.Version,
		Attachments: attachments,
	}
}

// ApplyPatch shallow-merges patch into the metadata: each supplied top-level
// key replaces the stored value wholesale. Keys match stored fields
// case-insensitively and an exact-case key wins over its variants. Protected
// and unknown keys are skipped.
func (m *NoteMapper) ApplyPatch(meta *model.NoteMetadata, patch map[string]json.RawMessage) error {
	if len(patch) == 0 {
		return nil
	}

	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &merged); err != nil {
		return err
	}

	keys := make([]string, 0, len(patch))
	for key := range patch {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		iExact, jExact := isStoredKey(merged, keys[i]), isStoredKey(merged, keys[j])
		if iExact != jExact {
			return jExact
		}
		return keys[i] < keys[j]
	})

	for _, key := range keys {
		field, ok := storedKey(merged, key)
		if !ok || model.ProtectedMetadataFields[field] {
			continue
		}
		merged[field] = patch[key]
	}

	raw, err = json.Marshal(merged)
	if err != nil {
		return err
	}

	var out model.NoteMetadata
	if err := json.Unmarshal(raw, &out); err != nil {
		return err
	}
	*meta = out
	return nil
}

func isStoredKey(stored map[string]json.RawMessage, key string) bool {
	_, ok := stored[key]
	return ok
}

func storedKey(stored map[string]json.RawMessage, key string) (string, bool) {
	if isStoredKey(stored, key) {
		return key, true
	}
	for field := range stored {
		if strings.EqualFold(field, key) {
			return field, true
		}
	}
	return "", false
}
