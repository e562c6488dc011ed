// Package config loads and saves the Fe client configuration, by default
// ~/.fe/config.json.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. The JSON file named by -c/-config, else $FE_CLIENT_CONFIG, else the
//     default path. Absent keys keep their defaults.
//  3. Command-line flags (see parseFlags).
//
// # JSON schema
//
//	{
//	  "server_ip": "127.0.0.1",
//	  "server_port": 26834,
//	  "sender_name": "alice",
//	  "auth_token": "alice's shared secret",
//	  "storage_path": "/home/alice/.fe/messages",
//	  "cache_path": "/home/alice/.fe/inbox.db",
//	  "nats_url": "nats://127.0.0.1:4222",
//	  "request_timeout": "10s"
//	}
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fe/internal/common"
	"github.com/dmitrijs2005/fe/internal/flagx"
)

// ConfigFileEnv names the environment variable that overrides the default
// config path.
const ConfigFileEnv = "FE_CLIENT_CONFIG"

// ErrNotInitialized means the config file does not exist yet.
var ErrNotInitialized = errors.New("client is not initialized, run `fe init`")

// Config holds runtime settings for the Fe CLI. AuthToken is the shared
// secret requests are signed with.
type Config struct {
	ServerIP       string
	ServerPort     int
	SenderName     string
	AuthToken      string
	StoragePath    string
	CachePath      string
	NATSURL        string
	RequestTimeout time.Duration
}

// DefaultDir is ~/.fe.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	return filepath.Join(home, ".fe"), nil
}

// LoadDefaults populates c with defaults rooted at dir.
func (c *Config) LoadDefaults(dir string) {
	c.ServerIP = "127.0.0.1"
	c.ServerPort = common.DefaultServerPort
	c.SenderName = ""
	c.AuthToken = ""
	c.StoragePath = filepath.Join(dir, "messages")
	c.CachePath = filepath.Join(dir, "inbox.db")
	c.NATSURL = ""
	c.RequestTimeout = 10 * time.Second
}

// BaseURL is the server root, e.g. http://127.0.0.1:26834.
func (c *Config) BaseURL() string {
	return "http://" + net.JoinHostPort(c.ServerIP, strconv.Itoa(c.ServerPort))
}

// Path resolves the config file location.
func Path() (string, error) {
	if p := flagx.ConfigFile(ConfigFileEnv); p != "" {
		return p, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadConfig applies defaults, the JSON file at path and flags. A missing
// file yields ErrNotInitialized along with the defaulted config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults(filepath.Dir(path))

	err := parseJson(cfg, path)
	parseFlags(cfg)

	return cfg, err
}
