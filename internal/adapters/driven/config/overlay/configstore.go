// Package overlay layers flags and environment variables over a persistent
// ConfigStore using viper. Reads prefer values viper knows about; writes go
// to the underlying store.
package overlay

import (
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// EnvPrefix prefixes every environment variable read by the overlay.
// "embedding.api_key" is read from SERCHA_RAG_EMBEDDING_API_KEY.
const EnvPrefix = "SERCHA_RAG"

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore answers from viper when a key is set there, else from base.
type ConfigStore struct {
	v    *viper.Viper
	base driven.ConfigStore
}

// New wraps base. A nil viper gets a fresh instance bound to the environment.
func New(v *viper.Viper, base driven.ConfigStore) *ConfigStore {
	if v == nil {
		v = NewViper()
	}
	return &ConfigStore{v: v, base: base}
}

// NewViper returns a viper instance reading SERCHA_RAG_* variables.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Get retrieves a value from the overlay, then the base store.
func (s *ConfigStore) Get(key string) (any, bool) {
	if s.v.IsSet(key) {
		return s.v.Get(key), true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *ConfigStore) GetString(key string) string {
	if s.v.IsSet(key) {
		return s.v.GetString(key)
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
func (s *ConfigStore) GetInt(key string) int {
	if s.v.IsSet(key) {
		return cast.ToInt(s.v.Get(key))
	}
	return s.base.GetInt(key)
}

// GetBool retrieves a boolean configuration value.
func (s *ConfigStore) GetBool(key string) bool {
	if s.v.IsSet(key) {
		return cast.ToBool(s.v.Get(key))
	}
	return s.base.GetBool(key)
}

// Set persists a value in the base store. Overlay values still win on read.
func (s *ConfigStore) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the base store.
func (s *ConfigStore) Save() error {
	return s.base.Save()
}

// Path returns the base store's file path.
func (s *ConfigStore) Path() string {
	return s.base.Path()
}
