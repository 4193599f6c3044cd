package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
)

const (
	EnvPrefix = "RSSREADER_"

	DefaultConfigPath   = "feeds.toml"
	DefaultRSSHubHost   = "https://rsshub.app"
	DefaultStoragePath  = "data"
	DefaultServerHost   = "127.0.0.1"
	DefaultServerPort   = 7878
	DefaultFetchTimeout = 20 * time.Second
	DefaultLogLevel     = "info"
)

// FeedEntry is one configured subscription. For RSSHub entries URL holds the route
// and Host optionally overrides the global RSSHub host.
type FeedEntry struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
	Host string `koanf:"host"`
}

type RSSHubConfig struct {
	Host string `koanf:"host"`
}

type StorageConfig struct {
	Path string `koanf:"path"`
}

type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	Open bool   `koanf:"open"`
}

type FetchConfig struct {
	Timeout time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

type Config struct {
	RSSHub      RSSHubConfig  `koanf:"rsshub"`
	RSS         []FeedEntry   `koanf:"rss"`
	RSSHubFeeds []FeedEntry   `koanf:"rsshub_feeds"`
	Storage     StorageConfig `koanf:"storage"`
	Server      ServerConfig  `koanf:"server"`
	Fetch       FetchConfig   `koanf:"fetch"`
	Log         LogConfig     `koanf:"log"`
}

// Load reads the feeds configuration at path, writing a default one first when the
// file does not exist. Environment variables prefixed with RSSREADER_ override file
// values; a double underscore separates nested keys (RSSREADER_RSSHUB__HOST).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	parser, err := parserFor(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteDefault(path); err != nil {
			return nil, err
		}
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, oops.With("config_file", path).Wrap(err)
	}

	// .env is optional
	_ = godotenv.Load()

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	if !k.Exists("storage.path") {
		k.Set("storage.path", DefaultStoragePath)
	}
	if !k.Exists("server.host") {
		k.Set("server.host", DefaultServerHost)
	}
	if !k.Exists("server.port") {
		k.Set("server.port", DefaultServerPort)
	}
	if !k.Exists("server.open") {
		k.Set("server.open", true)
	}
	if !k.Exists("fetch.timeout") {
		k.Set("fetch.timeout", DefaultFetchTimeout)
	}
	if !k.Exists("log.level") {
		k.Set("log.level", DefaultLogLevel)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("config_file", path, "context", "unmarshaling config").Wrap(err)
	}

	return &cfg, nil
}

// Default returns the settings used when no config file is involved, as for the
// one-shot read commands. It has no feeds.
func Default() *Config {
	return &Config{
		RSSHub:  RSSHubConfig{Host: DefaultRSSHubHost},
		Storage: StorageConfig{Path: DefaultStoragePath},
		Server:  ServerConfig{Host: DefaultServerHost, Port: DefaultServerPort, Open: true},
		Fetch:   FetchConfig{Timeout: DefaultFetchTimeout},
		Log:     LogConfig{Level: DefaultLogLevel},
	}
}

// WriteDefault creates a starter config with one plain RSS feed and one RSSHub route.
func WriteDefault(path string) error {
	parser, err := parserFor(path)
	if err != nil {
		return err
	}

	data, err := parser.Marshal(defaultValues())
	if err != nil {
		return oops.With("config_file", path, "context", "marshaling default config").Wrap(err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return oops.With("config_file", path).Wrap(err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return oops.With("config_file", path, "context", "writing default config").Wrap(err)
	}
	return nil
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"rsshub": map[string]interface{}{
			"host": DefaultRSSHubHost,
		},
		"rss": []map[string]interface{}{
			{"name": "Hacker News", "url": "https://news.ycombinator.com/rss"},
		},
		"rsshub_feeds": []map[string]interface{}{
			{"name": "GitHub Trending", "url": "/github/trending/daily"},
		},
	}
}

func parserFor(path string) (koanf.Parser, error) {
	ext := filepath.Ext(path)
	switch ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, oops.With("config_file", path).Errorf("unsupported config file extension: %s", ext)
	}
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
