// Package config reads the agent's options fresh every round and
// validates them into a per-round snapshot. A snapshot that fails
// validation suspends monitoring for that round only.
package config

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"pingcheck/pkg/log"
)

// Store hands out option values by name. Implementations must reflect
// external changes between rounds without a daemon restart.
type Store interface {
	Get(name string) (string, bool)
}

// StaticStore serves options from a fixed map.
type StaticStore map[string]string

func (s StaticStore) Get(name string) (string, bool) {
	v, ok := s[name]
	return v, ok
}

// optionsFile is the on-disk layout: one flat map under "options".
type optionsFile struct {
	Options map[string]any `yaml:"options"`
}

// FileStore serves options from a YAML file and picks up edits as they
// land on disk. While the file is missing or unparsable every option
// reads as unset, which the validator turns into an inactive round.
type FileStore struct {
	path   string
	logger zerolog.Logger

	mu      sync.Mutex
	loaded  bool
	broken  bool
	modTime time.Time
	size    int64
	options map[string]string
}

// NewFileStore returns a store backed by the YAML file at path. The
// file is read lazily on first Get.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, logger: log.Component("config")}
}

func (f *FileStore) Get(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.refresh()
	v, ok := f.options[name]
	return v, ok
}

// refresh reloads the file when its modification time or size moved.
func (f *FileStore) refresh() {
	info, err := os.Stat(f.path)
	if err != nil {
		f.fail(err)
		return
	}
	if f.loaded && !f.broken && info.ModTime().Equal(f.modTime) && info.Size() == f.size {
		return
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		f.fail(err)
		return
	}

	var parsed optionsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		f.fail(err)
		return
	}

	options := make(map[string]string, len(parsed.Options))
	for name, value := range parsed.Options {
		options[name] = scalarString(value)
	}

	if f.broken {
		f.logger.Info().Str("path", f.path).Msg("options file is readable again")
	}
	f.loaded = true
	f.broken = false
	f.modTime = info.ModTime()
	f.size = info.Size()
	f.options = options
}

// fail clears the loaded options and logs once per breakage episode.
func (f *FileStore) fail(err error) {
	if !f.broken {
		f.logger.Error().Err(err).Str("path", f.path).Msg("options file unreadable")
	}
	f.loaded = true
	f.broken = true
	f.options = nil
}

// scalarString renders a YAML scalar the way the option parser expects
// it, so operators may write CHECKINTERVAL: 5 without quotes.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
