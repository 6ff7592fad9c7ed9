package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cast"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

const fileName = "config.toml"

// ConfigStore keeps the decoded TOML document as a tree of tables and
// resolves dotted keys by walking it.
type ConfigStore struct {
	mu   sync.RWMutex
	path string
	tree map[string]any
}

// NewConfigStore opens configDir/config.toml, creating configDir when
// needed. An empty configDir means ~/.sercha-rag. A missing file is an
// empty config.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		configDir = filepath.Join(home, ".sercha-rag")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, fileName)
	tree, err := readTree(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &ConfigStore{path: path, tree: tree}, nil
}

func readTree(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	tree := map[string]any{}
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Get returns the value at a dotted key such as "embedding.provider".
// A key naming a table returns the table.
func (s *ConfigStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var node any = s.tree
	for _, part := range strings.Split(key, ".") {
		table, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		if node, ok = table[part]; !ok {
			return nil, false
		}
	}
	return node, true
}

// GetString returns "" unless the value is a string.
func (s *ConfigStore) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

// GetInt accepts TOML integers and quoted numbers.
func (s *ConfigStore) GetInt(key string) int {
	v, ok := s.Get(key)
	if !ok {
		return 0
	}
	if str, isStr := v.(string); isStr {
		v = strings.TrimSpace(str)
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0
	}
	return n
}

// GetBool accepts TOML booleans and quoted ones.
func (s *ConfigStore) GetBool(key string) bool {
	v, ok := s.Get(key)
	if !ok {
		return false
	}
	b, err := cast.ToBoolE(v)
	return err == nil && b
}

// Set writes value at a dotted key, creating tables on the way, and saves.
// It fails when a key segment already holds a plain value.
func (s *ConfigStore) Set(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	parts := strings.Split(key, ".")
	table := s.tree
	for i, part := range parts[:len(parts)-1] {
		switch next := table[part].(type) {
		case map[string]any:
			table = next
		case nil:
			child := map[string]any{}
			table[part] = child
			table = child
		default:
			return fmt.Errorf("set %s: %s is not a table", key, strings.Join(parts[:i+1], "."))
		}
	}
	last := parts[len(parts)-1]
	prev, had := table[last]
	table[last] = value
	if err := s.write(); err != nil {
		if had {
			table[last] = prev
		} else {
			delete(table, last)
		}
		return err
	}
	return nil
}

// Save writes the tree back to disk.
func (s *ConfigStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write()
}

func (s *ConfigStore) write() error {
	raw, err := toml.Marshal(s.tree)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return os.WriteFile(s.path, raw, 0600)
}

// Path is the TOML file.
func (s *ConfigStore) Path() string {
	return s.path
}
