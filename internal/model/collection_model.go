package model

import "time"

// Collection is one record of <base>/<userId>/.collections/<kind>.json.
// SortOrder is a pointer because records written before ordering existed lack it.
type Collection struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color,omitempty"`
	SortOrder *int      `json:"sortOrder,omitempty"`
	ParentId  *string   `json:"parentId,omitempty"`
	Created   time.Time `json:"created"`
	Updated   time.Time `json:"updated"`
}
