package model

import "time"

// StorageSettings persists the admin-selected notes base path across restarts.
type StorageSettings struct {
	NotesBasePath string    `json:"notesBasePath"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
