package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/imqueue/imq-cli/internal/branding"
	"github.com/imqueue/imq-cli/internal/platform"
	"github.com/imqueue/imq-cli/internal/userdata"
	"github.com/spf13/viper"
)

const fileType = "json"

// Store reads and writes one config file.
type Store struct {
	path string
	v    *viper.Viper
}

// Open loads the config file at path. A missing file yields an empty store.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	for key, suffix := range envSuffixes {
		if err := v.BindEnv(key, branding.EnvVar(suffix)); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	// An absent or zero-length file is an empty config.
	if info, err := os.Stat(path); err == nil && info.Size() > 0 {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}
	return &Store{path: path, v: v}, nil
}

// OpenDefault loads ~/.imq/config.json.
func OpenDefault() (*Store, error) {
	path, err := userdata.GetConfigPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// Path returns the config file location.
func (s *Store) Path() string {
	return s.path
}

// Defaults decodes the config into a Defaults value.
func (s *Store) Defaults() (Defaults, error) {
	var d Defaults
	if err := s.v.Unmarshal(&d); err != nil {
		return Defaults{}, fmt.Errorf("decoding config: %w", err)
	}
	return d, nil
}

// Get returns the value stored under key, or nil when unset.
func (s *Store) Get(key string) any {
	return s.v.Get(key)
}

// Keys returns the keys present in the config file, sorted.
func (s *Store) Keys() ([]string, error) {
	doc, err := s.readDocument()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Set stores value under key and rewrites the file. The value is coerced
// with Coerce first; a nil result removes the key. The file is left
// readable by its owner only since it may hold tokens.
func (s *Store) Set(key, value string) error {
	coerced, err := Coerce(value)
	if err != nil {
		return err
	}
	return s.store(key, coerced)
}

// SetString stores value verbatim, without literal coercion. Used for
// secrets, which may look like "null" or JSON.
func (s *Store) SetString(key, value string) error {
	return s.store(key, value)
}

func (s *Store) store(key string, coerced any) error {
	doc, err := s.readDocument()
	if err != nil {
		return err
	}
	if coerced == nil {
		delete(doc, key)
	} else {
		doc[key] = coerced
	}

	if err := s.writeDocument(doc); err != nil {
		return err
	}

	s.v.Set(key, coerced)
	return nil
}

// Coerce converts a command-line string into a JSON value: true, false and
// null become literals, text starting with [ or { is parsed as JSON, and
// anything else stays a string.
func Coerce(value string) (any, error) {
	switch value {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null", "undefined":
		return nil, nil
	}

	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		var v any
		if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
			return nil, fmt.Errorf("parsing JSON value: %w", err)
		}
		return v, nil
	}
	return value, nil
}

// readDocument returns the raw JSON object from disk, preserving key case.
func (s *Store) readDocument() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}, nil
	}

	doc := map[string]any{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", s.path, err)
	}
	return doc, nil
}

func (s *Store) writeDocument(doc map[string]any) error {
	if err := os.MkdirAll(filepath.Dir(s.path), userdata.DirPermSecure); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(s.path, data, platform.SecretFileMode); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return platform.RestrictToOwner(s.path)
}
