package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/fe/internal/timex"
)

// JsonConfig is the on-disk shape of the client configuration.
type JsonConfig struct {
	ServerIP       string          `json:"server_ip,omitempty"`
	ServerPort     *int            `json:"server_port,omitempty"`
	SenderName     string          `json:"sender_name,omitempty"`
	AuthToken      string          `json:"auth_token"`
	StoragePath    string          `json:"storage_path,omitempty"`
	CachePath      string          `json:"cache_path,omitempty"`
	NATSURL        string          `json:"nats_url,omitempty"`
	RequestTimeout *timex.Duration `json:"request_timeout,omitempty"`
}

func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotInitialized
	}
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerIP, jc.ServerIP)
	if jc.ServerPort != nil {
		cfg.ServerPort = *jc.ServerPort
	}
	setString(&cfg.SenderName, jc.SenderName)
	setString(&cfg.AuthToken, jc.AuthToken)
	setString(&cfg.StoragePath, jc.StoragePath)
	setString(&cfg.CachePath, jc.CachePath)
	setString(&cfg.NATSURL, jc.NATSURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Save writes c to path, creating the directory. The file holds the
// shared secret so it is private to the user.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	port := c.ServerPort
	jc := JsonConfig{
		ServerIP:       c.ServerIP,
		ServerPort:     &port,
		SenderName:     c.SenderName,
		AuthToken:      c.AuthToken,
		StoragePath:    c.StoragePath,
		CachePath:      c.CachePath,
		NATSURL:        c.NATSURL,
		RequestTimeout: &timex.Duration{Duration: c.RequestTimeout},
	}

	data, err := json.MarshalIndent(jc, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}
