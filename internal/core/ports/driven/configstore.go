package driven

// ConfigStore holds settings under flat dotted keys such as
// "embedding.provider". Typed getters convert loosely (a quoted "7" is 7)
// and return the zero value for missing or unconvertible entries.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores a value. File-backed stores write through.
	Set(key string, value any) error

	// Save persists every value.
	Save() error

	// Path names where values are kept.
	Path() string
}
