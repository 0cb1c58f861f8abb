package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	appName = "songshift"

	MaxBatchSize       = 50
	MinAuthTimeout     = 5
	MaxAuthTimeout     = 30
	MappingStoreCSV    = "csv"
	MappingStoreSQLite = "sqlite"
	ReportFormatJSON   = "json"
	ReportFormatCSV    = "csv"
	ReportFormatText   = "text"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Auth        AuthConfig        `toml:"auth"`
	Matcher     MatcherConfig     `toml:"matcher"`
	Import      ImportConfig      `toml:"import"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials and the cached OAuth2 token.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenType    string    `toml:"token_type,omitempty"`
	Expiry       time.Time `toml:"expiry,omitempty"`
}

// Token returns the cached [oauth2.Token], or nil when no token has been saved.
func (s SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" && s.RefreshToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		Expiry:       s.Expiry,
	}
}

// Update stores token on the config. The refresh token is kept when the new token omits it.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: nil token", ErrInvalidInput)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenType = token.TokenType
	s.Expiry = token.Expiry
	return nil
}

// YouTubeConfig contains settings for the ytmusicapi proxy.
type YouTubeConfig struct {
	ProxyURL string `toml:"proxy_url"`
	AuthFile string `toml:"auth_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains the loopback address used for the OAuth2 redirect.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// AuthConfig bounds the interactive authorization step.
type AuthConfig struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the configured timeout clamped to the supported range.
func (a AuthConfig) Timeout() time.Duration {
	secs := a.TimeoutSeconds
	if secs <= 0 {
		secs = MaxAuthTimeout
	}
	secs = max(MinAuthTimeout, min(secs, MaxAuthTimeout))
	return time.Duration(secs) * time.Second
}

// MatcherConfig tunes the track matching heuristic.
type MatcherConfig struct {
	ArtistThreshold   float64 `toml:"artist_threshold"`
	RemixToken        string  `toml:"remix_token"`
	Metric            string  `toml:"metric"`
	SearchLimit       int     `toml:"search_limit"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// ImportConfig contains settings for the import driver.
type ImportConfig struct {
	BatchSize    int    `toml:"batch_size"`
	ETAWindow    int    `toml:"eta_window"`
	MappingPath  string `toml:"mapping_path"`
	ReportPath   string `toml:"report_path"`
	MappingStore string `toml:"mapping_store"`
	ReportFormat string `toml:"report_format"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads path when it exists and falls back to [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// SaveConfig writes config to path as TOML. The file holds tokens so it is created with 0600.
func SaveConfig(path string, config *Config) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ApplyEnv overrides credentials with values from the process environment and, when present, envFile.
//
// Process environment wins over the file, matching [godotenv.Load].
func ApplyEnv(config *Config, envFile string) error {
	fileVars := map[string]string{}
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			vars, err := godotenv.Read(envFile)
			if err != nil {
				return fmt.Errorf("%w: failed to read %s: %v", ErrInvalidConfig, envFile, err)
			}
			fileVars = vars
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok && v != ""
	}

	for key, dst := range map[string]*string{
		"SPOTIFY_CLIENT_ID":     &config.Credentials.Spotify.ClientID,
		"SPOTIFY_CLIENT_SECRET": &config.Credentials.Spotify.ClientSecret,
		"SPOTIFY_REDIRECT_URI":  &config.Credentials.Spotify.RedirectURI,
		"YTMUSIC_PROXY_URL":     &config.Credentials.YouTube.ProxyURL,
		"YTMUSIC_AUTH_FILE":     &config.Credentials.YouTube.AuthFile,
	} {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	return nil
}

// DefaultDatabasePath returns the database location under the XDG data directory, creating parent directories.
func DefaultDatabasePath() (string, error) {
	path, err := xdg.DataFile(filepath.Join(appName, appName+".db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve data directory: %w", err)
	}
	return path, nil
}

// DefaultConfigPath returns config.toml under the XDG config directory.
func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.toml")
}

// ResolvePaths fills in locations left empty by the config file.
func (c *Config) ResolvePaths() error {
	if c.Database.Path == "" {
		path, err := DefaultDatabasePath()
		if err != nil {
			return err
		}
		c.Database.Path = path
	}
	return nil
}

// Validate checks option ranges and enumerations.
func (c *Config) Validate() error {
	if t := c.Matcher.ArtistThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: matcher.artist_threshold must be within [0, 1], got %v", ErrInvalidConfig, t)
	}
	switch c.Matcher.Metric {
	case "", "ratcliff-obershelp", "jaro-winkler", "levenshtein":
	default:
		return fmt.Errorf("%w: unknown matcher.metric %q", ErrInvalidConfig, c.Matcher.Metric)
	}
	if b := c.Import.BatchSize; b < 1 || b > MaxBatchSize {
		return fmt.Errorf("%w: import.batch_size must be within [1, %d], got %d", ErrInvalidConfig, MaxBatchSize, b)
	}
	switch c.Import.MappingStore {
	case MappingStoreCSV, MappingStoreSQLite:
	default:
		return fmt.Errorf("%w: unknown import.mapping_store %q", ErrInvalidConfig, c.Import.MappingStore)
	}
	switch c.Import.ReportFormat {
	case ReportFormatJSON, ReportFormatCSV, ReportFormatText:
	default:
		return fmt.Errorf("%w: unknown import.report_format %q", ErrInvalidConfig, c.Import.ReportFormat)
	}
	return nil
}
