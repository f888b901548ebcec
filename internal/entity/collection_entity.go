package entity

import (
	"time"

	"github.com/google/uuid"
)

// CollectionKind names one of the user-ordered entity lists.
type CollectionKind string

const (
	KindTag      CollectionKind = "tags"
	KindNotebook CollectionKind = "notebooks"
	KindFolder   CollectionKind = "folders"
)

var CollectionKinds = []CollectionKind{KindTag, KindNotebook, KindFolder}

func ParseCollectionKind(s string) (CollectionKind, bool) {
	for _, k := range CollectionKinds {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

// Nestable reports whether entities of this kind may carry a parent.
func (k CollectionKind) Nestable() bool {
	return k == KindNotebook || k == KindFolder
}

// Singular is used in messages and event names.
func (k CollectionKind) Singular() string {
	switch k {
	case KindTag:
		return "tag"
	case KindNotebook:
		return "notebook"
	case KindFolder:
		return "folder"
	}
	return string(k)
}

type Collection struct {
	Id        uuid.UUID
	UserId    string
	Kind      CollectionKind
	Name      string
	Color     string
	SortOrder int
	ParentId  *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}
