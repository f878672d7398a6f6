package config

import (
	"os"
	"strconv"
)

type Config struct {
	Dropbox    DropboxConfig
	FaceServer FaceServerConfig
	Match      MatchConfig
	Storage    StorageConfig
	Web        WebConfig
}

type DropboxConfig struct {
	AppKey       string
	AppSecret    string
	RefreshToken string
	Root         string // root folder for all face-gate data (default /face_gate)
}

type FaceServerConfig struct {
	URL string // defaults to http://localhost:8000
}

type MatchConfig struct {
	Threshold float64 // maximum accepted cosine distance (default 0.4)
	Strategy  string  // "first-match" (default) or "best-match"
}

type StorageConfig struct {
	// PostgresURL switches the record dataset to a Postgres-backed store
	// when set. Empty means the Dropbox blob store is used.
	PostgresURL string
	// Optimistic enables rev-checked dataset writes with one retry on
	// conflict. Off by default: the baseline contract is last-writer-wins.
	Optimistic bool
}

type WebConfig struct {
	Host string
	Port int
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envBool reads an environment variable as a boolean flag.
func envBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	return err == nil && v
}

// envDefault reads an environment variable with a fallback.
func envDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func Load() *Config {
	return &Config{
		Dropbox: DropboxConfig{
			AppKey:       os.Getenv("DROPBOX_APP_KEY"),
			AppSecret:    os.Getenv("DROPBOX_APP_SECRET"),
			RefreshToken: os.Getenv("DROPBOX_REFRESH_TOKEN"),
			Root:         envDefault("DROPBOX_ROOT", "/face_gate"),
		},
		FaceServer: FaceServerConfig{
			URL: envDefault("FACE_SERVER_URL", "http://localhost:8000"),
		},
		Match: MatchConfig{
			Threshold: envFloat("MATCH_THRESHOLD", 0.4),
			Strategy:  envDefault("MATCH_STRATEGY", "first-match"),
		},
		Storage: StorageConfig{
			PostgresURL: os.Getenv("RECORDS_DATABASE_URL"),
			Optimistic:  envBool("RECORDS_OPTIMISTIC_WRITES"),
		},
		Web: WebConfig{
			Host: envDefault("WEB_HOST", "0.0.0.0"),
			Port: envInt("WEB_PORT", 8080),
		},
	}
}
