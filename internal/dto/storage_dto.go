package dto

import "time"

type StoragePathRequest struct {
	Path string `json:"path" validate:"required"`
}

type StoragePathResponse struct {
	Path      string     `json:"path"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

type ValidateStorageResponse struct {
	Path     string `json:"path"`
	Valid    bool   `json:"valid"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
	Message  string `json:"message"`
}
