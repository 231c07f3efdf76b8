package codec

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the available codecs
type Registry struct {
	mu     sync.RWMutex
	codecs map[string]Codec // key can be either name or media type
}

var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{codecs: make(map[string]Codec)}
}

// Register registers a codec using both its name and media type
func Register(codec Codec) {
	defaultRegistry.Register(codec)
}

// Get retrieves a codec by name or media type
func Get(key string) (Codec, error) {
	return defaultRegistry.Get(key)
}

// List returns all registered codecs
func List() []Codec {
	return defaultRegistry.List()
}

// Register registers a codec using both its name and media type
func (r *Registry) Register(codec Codec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codecs[codec.Name()] = codec
	r.codecs[codec.MediaType()] = codec
}

// Get retrieves a codec by name or media type
func (r *Registry) Get(key string) (Codec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codec, ok := r.codecs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCodecNotFound, key)
	}
	return codec, nil
}

// List returns each registered codec once, ordered by name
func (r *Registry) List() []Codec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byName := make(map[string]Codec)
	for _, codec := range r.codecs {
		byName[codec.Name()] = codec
	}

	codecs := make([]Codec, 0, len(byName))
	for _, codec := range byName {
		codecs = append(codecs, codec)
	}
	sort.Slice(codecs, func(i, j int) bool {
		return codecs[i].Name() < codecs[j].Name()
	})
	return codecs
}
