// Package creds owns the Google Cloud credentials used by the
// translation clients: loading and saving them at the platform config
// location and refreshing the short-lived access token on demand.
package creds

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/singleflight"
)

// ErrNotConfigured is returned when no credentials have been saved yet.
var ErrNotConfigured = errors.New("credentials not configured; run 'pdftran config' first")

// Credentials is a read-only snapshot handed to translation clients.
// TokenExpiry is in-memory bookkeeping only and is not persisted.
type Credentials struct {
	APIKey      string    `mapstructure:"api_key"`
	AccessToken string    `mapstructure:"access_token"`
	ProjectID   string    `mapstructure:"project_id"`
	TokenExpiry time.Time `mapstructure:"-"`
}

// Empty reports whether no field carries a value.
func (c Credentials) Empty() bool {
	return c.APIKey == "" && c.AccessToken == "" && c.ProjectID == ""
}

// TokenSource produces a fresh access token. The default implementation
// shells out to gcloud; tests substitute their own.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Store loads, persists, and refreshes credentials. It is safe for
// concurrent use; Refresh is serialized so that simultaneous auth
// failures across segments collapse into a single token fetch.
type Store struct {
	path string
	ts   TokenSource

	mu  sync.RWMutex
	cur Credentials
	sf  singleflight.Group
}

// DefaultPath returns the platform config file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	return filepath.Join(dir, "pdftran", "config.toml"), nil
}

// Open reads the credential file at path. A missing or empty file
// yields ErrNotConfigured.
func Open(path string, ts TokenSource) (*Store, error) {
	cur, err := read(path)
	if err != nil {
		return nil, err
	}
	if cur.Empty() {
		return nil, ErrNotConfigured
	}
	return &Store{path: path, ts: ts, cur: cur}, nil
}

func read(path string) (Credentials, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return Credentials{}, ErrNotConfigured
		}
		return Credentials{}, fmt.Errorf("failed to read config: %w", err)
	}

	var c Credentials
	if err := v.Unmarshal(&c); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return c, nil
}

// Save persists c at path, merging with any previously stored values:
// empty fields keep what was on disk, so a partial update never wipes
// the other credentials.
func Save(path string, c Credentials) error {
	if prev, err := read(path); err == nil {
		if c.APIKey == "" {
			c.APIKey = prev.APIKey
		}
		if c.AccessToken == "" {
			c.AccessToken = prev.AccessToken
		}
		if c.ProjectID == "" {
			c.ProjectID = prev.ProjectID
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	v.Set("api_key", c.APIKey)
	v.Set("access_token", c.AccessToken)
	v.Set("project_id", c.ProjectID)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current credentials.
func (s *Store) Snapshot() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Refresh obtains a new access token through the token source, stores
// it, and persists it to disk. Concurrent callers share a single token
// fetch: whoever arrives while a refresh is in flight waits for that
// refresh and reuses its result.
func (s *Store) Refresh(ctx context.Context) (Credentials, error) {
	if s.ts == nil {
		return Credentials{}, errors.New("no token source configured")
	}

	v, err, _ := s.sf.Do("token", func() (interface{}, error) {
		token, err := s.ts.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("token refresh failed: %w", err)
		}

		s.mu.Lock()
		s.cur.AccessToken = token
		s.cur.TokenExpiry = time.Now().Add(55 * time.Minute)
		updated := s.cur
		s.mu.Unlock()

		if err := Save(s.path, updated); err != nil {
			// The refreshed token is still usable for this run even if
			// it could not be persisted.
			fmt.Fprintf(os.Stderr, "Warning: failed to persist refreshed token: %v\n", err)
		}
		return updated, nil
	})
	if err != nil {
		return Credentials{}, err
	}
	return v.(Credentials), nil
}
