package dto

import "time"

type MemoryStats struct {
	Alloc     uint64 `json:"alloc"`
	Sys       uint64 `json:"sys"`
	HeapInuse uint64 `json:"heapInuse"`
	NumGC     uint32 `json:"numGC"`
}

type HealthResponse struct {
	Status      string      `json:"status"`
	Timestamp   time.Time   `json:"timestamp"`
	Uptime      float64     `json:"uptime"`
	Memory      MemoryStats `json:"memory"`
	Port        int         `json:"port"`
	Environment string      `json:"environment"`
}

type LimitsResponse struct {
	MaxFileSize      int64    `json:"maxFileSize"`
	BodyLimit        int      `json:"bodyLimit"`
	AllowedMimeTypes []string `json:"allowedMimeTypes"`
}

type ConfigResponse struct {
	BackendUrl  string         `json:"backendUrl"`
	FrontendUrl string         `json:"frontendUrl"`
	Environment string         `json:"environment"`
	Limits      LimitsResponse `json:"limits"`
}
