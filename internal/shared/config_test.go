package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/oauth2"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 8000 {
			t.Errorf("expected server port 8000, got %d", config.Server.Port)
		}

		if config.Matcher.ArtistThreshold != 0.5 {
			t.Errorf("expected artist threshold 0.5, got %v", config.Matcher.ArtistThreshold)
		}

		if config.Matcher.RemixToken != "Remix" {
			t.Errorf("expected remix token Remix, got %s", config.Matcher.RemixToken)
		}

		if config.Import.BatchSize != 50 {
			t.Errorf("expected batch size 50, got %d", config.Import.BatchSize)
		}

		if config.Import.MappingPath != "spotify_mappings.csv" {
			t.Errorf("expected mapping path spotify_mappings.csv, got %s", config.Import.MappingPath)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "nested", "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Import.ReportPath != DefaultConfig().Import.ReportPath {
			t.Errorf("created config report path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"

[matcher]
artist_threshold = 0.7
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Matcher.ArtistThreshold != 0.7 {
			t.Errorf("expected threshold 0.7, got %v", config.Matcher.ArtistThreshold)
		}
		if config.Import.BatchSize != 50 {
			t.Errorf("expected default batch size 50, got %d", config.Import.BatchSize)
		}
	})

	t.Run("LoadConfig rejects bad toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[matcher\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("LoadConfigOrDefault", func(t *testing.T) {
		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "missing.toml"))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if config.Server.Port != 8000 {
			t.Errorf("expected default config, got port %d", config.Server.Port)
		}
	})

	t.Run("SaveConfig round trips token", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		config := DefaultConfig()
		expiry := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)

		err := config.Credentials.Spotify.Update(&oauth2.Token{
			AccessToken:  "access",
			RefreshToken: "refresh",
			TokenType:    "Bearer",
			Expiry:       expiry,
		})
		if err != nil {
			t.Fatalf("failed to update token: %v", err)
		}

		if err := SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		loaded, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load saved config: %v", err)
		}

		token := loaded.Credentials.Spotify.Token()
		if token == nil {
			t.Fatal("expected token to be present")
		}
		if token.AccessToken != "access" || token.RefreshToken != "refresh" {
			t.Errorf("unexpected token %+v", token)
		}
		if !token.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %v, got %v", expiry, token.Expiry)
		}
	})

	t.Run("Update keeps refresh token", func(t *testing.T) {
		s := SpotifyConfig{RefreshToken: "old"}
		if err := s.Update(&oauth2.Token{AccessToken: "new"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.RefreshToken != "old" {
			t.Errorf("expected refresh token old, got %s", s.RefreshToken)
		}
		if err := s.Update(nil); err == nil {
			t.Error("expected error for nil token")
		}
	})

	t.Run("Token is nil without credentials", func(t *testing.T) {
		if tok := (SpotifyConfig{}).Token(); tok != nil {
			t.Errorf("expected nil token, got %+v", tok)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Run("file values", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "")
		t.Setenv("SPOTIFY_CLIENT_SECRET", "")

		envFile := filepath.Join(t.TempDir(), ".env")
		content := "SPOTIFY_CLIENT_ID=from_file\nSPOTIFY_CLIENT_SECRET=secret_file\n"
		if err := os.WriteFile(envFile, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		config := DefaultConfig()
		if err := ApplyEnv(config, envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from_file" {
			t.Errorf("expected client id from_file, got %s", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "secret_file" {
			t.Errorf("expected client secret secret_file, got %s", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv("SPOTIFY_CLIENT_ID", "from_env")

		envFile := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(envFile, []byte("SPOTIFY_CLIENT_ID=from_file\n"), 0600); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}

		config := DefaultConfig()
		if err := ApplyEnv(config, envFile); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "from_env" {
			t.Errorf("expected client id from_env, got %s", config.Credentials.Spotify.ClientID)
		}
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		t.Setenv("YTMUSIC_PROXY_URL", "")
		config := DefaultConfig()
		if err := ApplyEnv(config, filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if config.Credentials.YouTube.ProxyURL != "http://127.0.0.1:8080" {
			t.Errorf("expected proxy url unchanged, got %s", config.Credentials.YouTube.ProxyURL)
		}
	})
}

func TestConfigValidate(t *testing.T) {
	tc := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "threshold above one", mutate: func(c *Config) { c.Matcher.ArtistThreshold = 1.5 }},
		{name: "negative threshold", mutate: func(c *Config) { c.Matcher.ArtistThreshold = -0.1 }},
		{name: "unknown metric", mutate: func(c *Config) { c.Matcher.Metric = "soundex" }},
		{name: "batch too large", mutate: func(c *Config) { c.Import.BatchSize = 51 }},
		{name: "batch zero", mutate: func(c *Config) { c.Import.BatchSize = 0 }},
		{name: "unknown store", mutate: func(c *Config) { c.Import.MappingStore = "redis" }},
		{name: "unknown report format", mutate: func(c *Config) { c.Import.ReportFormat = "xml" }},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestAuthTimeout(t *testing.T) {
	tc := []struct {
		seconds int
		want    time.Duration
	}{
		{0, 30 * time.Second},
		{1, 5 * time.Second},
		{12, 12 * time.Second},
		{600, 30 * time.Second},
	}

	for _, tt := range tc {
		got := AuthConfig{TimeoutSeconds: tt.seconds}.Timeout()
		if got != tt.want {
			t.Errorf("Timeout(%d) = %v, want %v", tt.seconds, got, tt.want)
		}
	}
}

func TestResolvePaths(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	xdg.Reload()

	config := DefaultConfig()
	if err := config.ResolvePaths(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasSuffix(config.Database.Path, filepath.Join("songshift", "songshift.db")) {
		t.Errorf("expected database under data dir, got %s", config.Database.Path)
	}

	config.Database.Path = "custom.db"
	if err := config.ResolvePaths(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Database.Path != "custom.db" {
		t.Errorf("expected explicit path to be kept, got %s", config.Database.Path)
	}
}
