package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	fallbackHost         = "localhost"
	fallbackFrontendPort = 3000
	fallbackBackendPort  = 3001
)

type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

func (e Endpoint) URL() string {
	return "http://" + e.Address()
}

type Endpoints struct {
	Frontend Endpoint `json:"frontend"`
	Backend  Endpoint `json:"backend"`
}

// fileEndpoints is the on-disk shape: the top-level keys are environment names.
type fileEndpoints map[string]struct {
	Frontend *Endpoint `json:"frontend"`
	Backend  *Endpoint `json:"backend"`
}

// ResolveEndpoints merges, per field, environment overrides over the config
// file entry for env over the hardcoded fallback. A missing or malformed file
// still yields usable endpoints alongside the error.
func ResolveEndpoints(path, env string) (Endpoints, error) {
	resolved := Endpoints{
		Frontend: Endpoint{Host: fallbackHost, Port: fallbackFrontendPort},
		Backend:  Endpoint{Host: fallbackHost, Port: fallbackBackendPort},
	}

	fileErr := applyConfigFile(&resolved, path, env)

	resolved.Frontend.Host = getEnv("FRONTEND_HOST", resolved.Frontend.Host)
	resolved.Backend.Host = getEnv("BACKEND_HOST", resolved.Backend.Host)
	resolved.Frontend.Port = portFromEnv("FRONTEND_PORT", resolved.Frontend.Port)
	resolved.Backend.Port = portFromEnv("BACKEND_PORT", resolved.Backend.Port)

	return resolved, fileErr
}

func applyConfigFile(resolved *Endpoints, path, env string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	var parsed fileEndpoints
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	entry, ok := parsed[env]
	if !ok {
		entry, ok = parsed[EnvDevelopment]
	}
	if !ok {
		return nil
	}

	if entry.Frontend != nil {
		mergeEndpoint(&resolved.Frontend, *entry.Frontend)
	}
	if entry.Backend != nil {
		mergeEndpoint(&resolved.Backend, *entry.Backend)
	}
	return nil
}

func mergeEndpoint(dst *Endpoint, src Endpoint) {
	if src.Host != "" {
		dst.Host = src.Host
	}
	if validPort(src.Port) {
		dst.Port = src.Port
	}
}

func portFromEnv(key string, fallback int) int {
	value, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || !validPort(value) {
		return fallback
	}
	return value
}

func validPort(port int) bool {
	return port > 0 && port <= 65535
}
