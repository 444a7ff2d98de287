package config

import "os"

// Environment variable names for overrides.
const (
	EnvToken     = "GOFILE_TOKEN"
	EnvAPIURL    = "GOFILE_API_URL"
	EnvUploadURL = "GOFILE_UPLOAD_URL"
	EnvConfig    = "GOFILE_GO_CONFIG"
)

// applyEnvOverrides applies environment variables on top of cfg.
// Environment always wins over file values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}

	if v := os.Getenv(EnvUploadURL); v != "" {
		cfg.UploadURL = v
	}
}
