package config

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for config files that are neither JSON nor YAML.
var ErrUnknownFormat = errors.New("config: unknown file format")

// DefaultFile is the config file the viewer looks for.
const DefaultFile = "viewer.json"

// Loader loads viewer configuration from JSON or YAML files using fs.FS interface
type Loader struct {
	fsys     fs.FS
	basePath string
}

// NewLoader creates a new config loader from filesystem path
func NewLoader(basePath string) *Loader {
	return &Loader{
		fsys:     os.DirFS(basePath),
		basePath: basePath,
	}
}

// NewFSLoader creates a new config loader from fs.FS
func NewFSLoader(fsys fs.FS, basePath string) *Loader {
	return &Loader{
		fsys:     fsys,
		basePath: basePath,
	}
}

// Load reads name (".json", ".yaml" or ".yml") on top of Default and
// validates the result.
func (l *Loader) Load(name string) (*ViewerConfig, error) {
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", name)
	}

	cfg := Default()
	if err := decode(name, data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", name)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid %s", name)
	}
	return cfg, nil
}

// LoadAll loads DefaultFile
func (l *Loader) LoadAll() (*ViewerConfig, error) {
	return l.Load(DefaultFile)
}

func decode(name string, data []byte, v any) error {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return json.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	default:
		return errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
}
