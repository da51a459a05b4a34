package api

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// LabelResponse is the payload of a dictionary lookup.
type LabelResponse struct {
	Hash  string `json:"hash"`
	Label string `json:"label"`
	Known bool   `json:"known"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Bind   string
	Port   int
	APIKey string

	// MaxBodyBytes bounds uploaded documents; zero means the default.
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 64 << 20
