package sources

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Source kinds understood by BuildFeeds.
const (
	KindHTTP    = "http"
	KindFixture = "fixture"
)

var (
	// ErrMissingID is returned when a source entry has no id.
	ErrMissingID = errors.New("sources: source id is required")
	// ErrDuplicateID is returned when two entries share an id.
	ErrDuplicateID = errors.New("sources: duplicate source id")
	// ErrMissingURL is returned when an http source has no url.
	ErrMissingURL = errors.New("sources: http source requires url")
	// ErrUnknownKind is returned for kinds other than http and fixture.
	ErrUnknownKind = errors.New("sources: unknown source kind")
)

// Source is one configured upstream.
type Source struct {
	ID          string        `yaml:"id" json:"id"`
	Name        string        `yaml:"name" json:"name"`
	Kind        string        `yaml:"kind" json:"kind"`
	URL         string        `yaml:"url" json:"url,omitempty"`
	APIKey      string        `yaml:"api_key" json:"-"`
	APIKeyEnv   string        `yaml:"api_key_env" json:"-"`
	Enabled     *bool         `yaml:"enabled" json:"-"`
	MinInterval time.Duration `yaml:"min_interval" json:"minInterval,omitempty"`
}

// IsEnabled reports whether the source should be polled; entries default to enabled.
func (s Source) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// DisplayName returns the configured name or the id.
func (s Source) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

type document struct {
	Sources []Source `yaml:"sources"`
}

// Registry maps source ids to their configuration and display names.
type Registry struct {
	sources []Source
	byID    map[string]int
}

// Load reads a YAML registry from path.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("sources: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML registry document.
func Parse(data []byte) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("sources: decode: %w", err)
	}
	return New(doc.Sources...)
}

// New builds a registry from already-decoded entries.
func New(entries ...Source) (*Registry, error) {
	r := &Registry{byID: make(map[string]int, len(entries))}
	for i, src := range entries {
		src.ID = strings.TrimSpace(src.ID)
		src.Kind = strings.ToLower(strings.TrimSpace(src.Kind))
		if src.Kind == "" {
			src.Kind = KindHTTP
		}
		if src.ID == "" {
			return nil, fmt.Errorf("%w (entry %d)", ErrMissingID, i)
		}
		if _, dup := r.byID[src.ID]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, src.ID)
		}
		switch src.Kind {
		case KindHTTP:
			if strings.TrimSpace(src.URL) == "" {
				return nil, fmt.Errorf("%w: %s", ErrMissingURL, src.ID)
			}
		case KindFixture:
		default:
			return nil, fmt.Errorf("%w %q: %s", ErrUnknownKind, src.Kind, src.ID)
		}
		if src.APIKey == "" && src.APIKeyEnv != "" {
			src.APIKey = os.Getenv(src.APIKeyEnv)
		}
		r.byID[src.ID] = len(r.sources)
		r.sources = append(r.sources, src)
	}
	return r, nil
}

// Name resolves a source id to its display name, falling back to the id itself.
func (r *Registry) Name(sourceID string) string {
	if src, ok := r.Get(sourceID); ok {
		return src.DisplayName()
	}
	return sourceID
}

// Get returns the entry for id.
func (r *Registry) Get(id string) (Source, bool) {
	if r == nil {
		return Source{}, false
	}
	i, ok := r.byID[id]
	if !ok {
		return Source{}, false
	}
	return r.sources[i], true
}

// Sources returns every entry in file order.
func (r *Registry) Sources() []Source {
	if r == nil {
		return nil
	}
	return append([]Source(nil), r.sources...)
}

// Enabled returns the entries that should be polled.
func (r *Registry) Enabled() []Source {
	if r == nil {
		return nil
	}
	out := make([]Source, 0, len(r.sources))
	for _, src := range r.sources {
		if src.IsEnabled() {
			out = append(out, src)
		}
	}
	return out
}
