package dto

import "time"

type CreateCollectionRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	Color    string  `json:"color" validate:"omitempty,hexcolor_short"`
	ParentId *string `json:"parentId" validate:"omitempty,uuid"`
}

type UpdateCollectionRequest struct {
	Name  *string `json:"name" validate:"omitempty,max=200"`
	Color *string `json:"color" validate:"omitempty,hexcolor_short"`
}

type ReorderRequest struct {
	SourceId string `json:"sourceId" validate:"required,uuid"`
	TargetId string `json:"targetId" validate:"required,uuid"`
	Position string `json:"position" validate:"required,oneof=before after"`
}

type MoveCollectionRequest struct {
	ParentId *string `json:"parentId" validate:"omitempty,uuid"`
}

type CollectionResponse struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	SortOrder int       `json:"sortOrder"`
	ParentId  *string   `json:"parentId,omitempty"`
	NoteCount int       `json:"noteCount"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}
