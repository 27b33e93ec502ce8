package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-password/password"
	"github.com/spf13/afero"
)

// Environment variables that take precedence over the settings file.
const (
	EnvConfigPath  = "CINETRACK_CONFIG"
	EnvTMDBAPIKey  = "TMDB_API_KEY"
	EnvDatabaseURL = "DATABASE_URL"
	EnvJWTSecret   = "JWT_SECRET"
	EnvPort        = "PORT"

	DefaultPath = "cache/settings.json"
)

// Settings represents the application configuration persisted to disk.
type Settings struct {
	Server          ServerSettings          `json:"server"`
	Database        DatabaseSettings        `json:"database"`
	Metadata        MetadataSettings        `json:"metadata"`
	Auth            AuthSettings            `json:"auth"`
	RateLimit       RateLimitSettings       `json:"rateLimit"`
	Browse          BrowseSettings          `json:"browse"`
	Recommendations RecommendationsSettings `json:"recommendations"`
	Log             LogConfig               `json:"log"`
}

type ServerSettings struct {
	Host   string `json:"host"`
	Port   int    `json:"port"`
	Locale string `json:"locale"` // fallback message language when Accept-Language does not match
	// AllowedOrigins lists browser origins allowed besides local and
	// private-network ones.
	AllowedOrigins []string `json:"allowedOrigins,omitempty"`
}

// DatabaseSettings selects the SQL backend. Driver is "sqlite3" or "postgres".
type DatabaseSettings struct {
	Driver              string `json:"driver"`
	Path                string `json:"path"`
	DSN                 string `json:"dsn,omitempty"`
	ConnectAttempts     int    `json:"connectAttempts"`
	ConnectDelaySeconds int    `json:"connectDelaySeconds"`
}

type MetadataSettings struct {
	TMDBAPIKey        string  `json:"tmdbApiKey"`
	Language          string  `json:"language"`
	BaseURL           string  `json:"baseUrl"`
	ImageBaseURL      string  `json:"imageBaseUrl"`
	TimeoutSeconds    int     `json:"timeoutSeconds"`
	RequestsPerSecond float64 `json:"requestsPerSecond"`
}

type AuthSettings struct {
	JWTSecret string `json:"jwtSecret"`
}

// RateLimitSettings bounds requests per client IP within a window.
type RateLimitSettings struct {
	Requests      int `json:"requests"`
	WindowMinutes int `json:"windowMinutes"`
}

type BrowseSettings struct {
	MaxFeeds int `json:"maxFeeds"` // accumulators kept in memory across all users
}

type RecommendationsSettings struct {
	MaxResults          int `json:"maxResults"`
	LikedSources        int `json:"likedSources"`
	PerSource           int `json:"perSource"`
	FetchTimeoutSeconds int `json:"fetchTimeoutSeconds"`
}

// LogConfig represents logging configuration.
type LogConfig struct {
	File       string `json:"file"`
	Level      string `json:"level"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

// ConnectDelay returns the wait between connection attempts.
func (d DatabaseSettings) ConnectDelay() time.Duration {
	return time.Duration(d.ConnectDelaySeconds) * time.Second
}

// Timeout returns the per-request catalog timeout.
func (m MetadataSettings) Timeout() time.Duration {
	return time.Duration(m.TimeoutSeconds) * time.Second
}

// Window returns the rate limit window.
func (r RateLimitSettings) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

// FetchTimeout returns the per-source timeout for like-based aggregation.
func (r RecommendationsSettings) FetchTimeout() time.Duration {
	return time.Duration(r.FetchTimeoutSeconds) * time.Second
}

// DefaultSettings returns sane defaults for a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Server: ServerSettings{
			Host:           "0.0.0.0",
			Port:           5000,
			Locale:         "es",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseSettings{
			Driver:              "sqlite3",
			Path:                "cache/cinetrack.db",
			ConnectAttempts:     10,
			ConnectDelaySeconds: 5,
		},
		Metadata: MetadataSettings{
			Language:          "es-ES",
			BaseURL:           "https://api.themoviedb.org/3",
			ImageBaseURL:      "https://image.tmdb.org/t/p",
			TimeoutSeconds:    15,
			RequestsPerSecond: 20,
		},
		RateLimit: RateLimitSettings{Requests: 100, WindowMinutes: 15},
		Browse:    BrowseSettings{MaxFeeds: 512},
		Recommendations: RecommendationsSettings{
			MaxResults:          20,
			LikedSources:        3,
			PerSource:           5,
			FetchTimeoutSeconds: 10,
		},
		Log: LogConfig{
			File:       "cache/logs/backend.log",
			Level:      "info",
			MaxSize:    50,   // 50 MB per file
			MaxBackups: 3,    // keep 3 old files
			MaxAge:     7,    // 7 days
			Compress:   true, // compress old files
		},
	}
}

// Manager loads and persists settings to a JSON file.
type Manager struct {
	fs     afero.Fs
	path   string
	getenv func(string) string
}

// NewManager returns a manager backed by the OS filesystem.
func NewManager(configPath string) *Manager {
	return NewManagerFs(afero.NewOsFs(), configPath)
}

// NewManagerFs returns a manager on an arbitrary filesystem.
func NewManagerFs(fs afero.Fs, configPath string) *Manager {
	return &Manager{fs: fs, path: configPath, getenv: os.Getenv}
}

// ResolvePath picks the settings path: explicit flag, then environment,
// then the default.
func ResolvePath(flagValue string) string {
	if v := strings.TrimSpace(flagValue); v != "" {
		return v
	}
	if v := strings.TrimSpace(os.Getenv(EnvConfigPath)); v != "" {
		return v
	}
	return DefaultPath
}

// Path returns the settings file location.
func (m *Manager) Path() string {
	return m.path
}

// EnsureDir ensures parent directory exists.
func (m *Manager) EnsureDir() error {
	dir := filepath.Dir(m.path)
	if dir == "." || dir == "" {
		return nil
	}
	return m.fs.MkdirAll(dir, 0o755)
}

// Load reads settings.json from disk or creates defaults if missing. A
// missing JWT secret is generated and persisted. Environment overrides are
// applied to the returned value only and never written back.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, errors.New("config path not set")
	}

	s := DefaultSettings()
	exists, err := afero.Exists(m.fs, m.path)
	if err != nil {
		return Settings{}, err
	}
	dirty := !exists
	if exists {
		data, err := afero.ReadFile(m.fs, m.path)
		if err != nil {
			return Settings{}, err
		}
		// Unmarshal over defaults so sections absent from older files keep
		// their default values.
		if err := json.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parse %s: %w", m.path, err)
		}
	}

	if strings.TrimSpace(s.Auth.JWTSecret) == "" && strings.TrimSpace(m.getenv(EnvJWTSecret)) == "" {
		secret, err := generateSecret()
		if err != nil {
			return Settings{}, err
		}
		s.Auth.JWTSecret = secret
		dirty = true
	}

	s = normalise(s)
	if dirty {
		if err := m.Save(s); err != nil {
			return Settings{}, err
		}
	}
	return m.applyEnv(s), nil
}

func generateSecret() (string, error) {
	secret, err := password.Generate(48, 10, 0, false, true)
	if err != nil {
		return "", fmt.Errorf("generate jwt secret: %w", err)
	}
	return secret, nil
}

func normalise(s Settings) Settings {
	defaults := DefaultSettings()
	s.Database.Driver = strings.ToLower(strings.TrimSpace(s.Database.Driver))
	if s.Database.Driver == "" {
		s.Database.Driver = defaults.Database.Driver
	}
	if s.Database.ConnectAttempts <= 0 {
		s.Database.ConnectAttempts = defaults.Database.ConnectAttempts
	}
	if s.Database.ConnectDelaySeconds < 0 {
		s.Database.ConnectDelaySeconds = defaults.Database.ConnectDelaySeconds
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = defaults.Metadata.Language
	}
	s.Metadata.BaseURL = strings.TrimRight(strings.TrimSpace(s.Metadata.BaseURL), "/")
	if s.Metadata.BaseURL == "" {
		s.Metadata.BaseURL = defaults.Metadata.BaseURL
	}
	s.Metadata.ImageBaseURL = strings.TrimRight(strings.TrimSpace(s.Metadata.ImageBaseURL), "/")
	if s.Metadata.ImageBaseURL == "" {
		s.Metadata.ImageBaseURL = defaults.Metadata.ImageBaseURL
	}
	if s.Metadata.TimeoutSeconds <= 0 {
		s.Metadata.TimeoutSeconds = defaults.Metadata.TimeoutSeconds
	}
	if s.RateLimit.Requests <= 0 {
		s.RateLimit.Requests = defaults.RateLimit.Requests
	}
	if s.RateLimit.WindowMinutes <= 0 {
		s.RateLimit.WindowMinutes = defaults.RateLimit.WindowMinutes
	}
	if s.Browse.MaxFeeds <= 0 {
		s.Browse.MaxFeeds = defaults.Browse.MaxFeeds
	}
	if s.Recommendations.MaxResults <= 0 {
		s.Recommendations.MaxResults = defaults.Recommendations.MaxResults
	}
	if s.Recommendations.LikedSources <= 0 {
		s.Recommendations.LikedSources = defaults.Recommendations.LikedSources
	}
	if s.Recommendations.PerSource <= 0 {
		s.Recommendations.PerSource = defaults.Recommendations.PerSource
	}
	if s.Recommendations.FetchTimeoutSeconds <= 0 {
		s.Recommendations.FetchTimeoutSeconds = defaults.Recommendations.FetchTimeoutSeconds
	}
	return s
}

func (m *Manager) applyEnv(s Settings) Settings {
	if v := strings.TrimSpace(m.getenv(EnvTMDBAPIKey)); v != "" {
		s.Metadata.TMDBAPIKey = v
	}
	if v := strings.TrimSpace(m.getenv(EnvDatabaseURL)); v != "" {
		s.Database.Driver = "postgres"
		s.Database.DSN = v
	}
	if v := strings.TrimSpace(m.getenv(EnvJWTSecret)); v != "" {
		s.Auth.JWTSecret = v
	}
	if v := strings.TrimSpace(m.getenv(EnvPort)); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			s.Server.Port = port
		}
	}
	return s
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return errors.New("config path not set")
	}
	if err := m.EnsureDir(); err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	f, err := m.fs.Create(tmp)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		_ = m.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = m.fs.Remove(tmp)
		return err
	}
	return m.fs.Rename(tmp, m.path)
}
