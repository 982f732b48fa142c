package jobfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/jobtx/pkg/errors"
	"github.com/arthur-debert/jobtx/pkg/project"
	"github.com/arthur-debert/jobtx/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a jobfile encoding
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// DefaultNames are searched in the project root, in order.
var DefaultNames = []string{"jobs.toml", "jobs.yaml", "jobs.yml"}

// File is a parsed jobfile
type File struct {
	Jobs []Spec `toml:"jobs" yaml:"jobs"`

	// Path is where the file was loaded from, empty for parsed bytes.
	Path string `toml:"-" yaml:"-"`
}

// Spec declares one job
type Spec struct {
	Name    string    `toml:"name" yaml:"name"`
	If      string    `toml:"if,omitempty" yaml:"if,omitempty"`
	Changes []string  `toml:"changes,omitempty" yaml:"changes,omitempty"`
	Run     string    `toml:"run,omitempty" yaml:"run,omitempty"`
	Undo    string    `toml:"undo,omitempty" yaml:"undo,omitempty"`
	JSON    *JSONEdit `toml:"json,omitempty" yaml:"json,omitempty"`
}

// JSONEdit sets dotted keys in a JSON document
type JSONEdit struct {
	File string                 `toml:"file" yaml:"file"`
	Set  map[string]interface{} `toml:"set" yaml:"set"`
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf(errors.ErrJobfileInvalid, "cannot tell jobfile format of %s", path).
			WithDetail("path", path)
	}
}

// Parse decodes a jobfile. Unknown keys are rejected.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, errors.Wrap(err, errors.ErrJobfileInvalid, "invalid TOML jobfile")
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		// An empty document decodes to io.EOF; treat it as no jobs.
		if err := dec.Decode(&f); err != nil && len(bytes.TrimSpace(data)) > 0 {
			return nil, errors.Wrap(err, errors.ErrJobfileInvalid, "invalid YAML jobfile")
		}
	default:
		return nil, errors.Newf(errors.ErrJobfileInvalid, "unknown jobfile format %q", format)
	}
	return &f, nil
}

// Load reads and parses the jobfile at path.
func Load(fsys types.FS, path string) (*File, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read jobfile %s", path).
			WithDetail("path", path)
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrJobfileInvalid, "cannot load %s", path).
			WithDetail("path", path)
	}
	f.Path = path
	return f, nil
}

// Find returns the first of names present in the root.
func Find(fsys types.FS, root project.Root, names []string) (string, error) {
	if len(names) == 0 {
		names = DefaultNames
	}
	for _, name := range names {
		path := root.Path(name)
		if info, err := fsys.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", errors.Newf(errors.ErrNotFound, "no jobfile in %s", root.Dir).
		WithDetail("root", root.Dir).
		WithDetail("names", names)
}

// Validate checks the jobs against root. Every problem found is reported
// in one JOBFILE_INVALID error.
func (f *File) Validate(root project.Root) error {
	var problems []string
	seen := make(map[string]bool, len(f.Jobs))
	report := func(label, format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf("job %s: ", label)+fmt.Sprintf(format, args...))
	}

	for i, spec := range f.Jobs {
		label := spec.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			report(label, "name is required")
		} else if seen[spec.Name] {
			report(label, "duplicate name")
		}
		seen[spec.Name] = true

		if spec.Run == "" && spec.JSON == nil {
			report(label, "needs run or json")
		}
		for _, c := range spec.Changes {
			if strings.TrimSpace(c) == "" {
				report(label, "empty path in changes")
			} else if !root.Contains(c) {
				report(label, "change %s is outside the project root", c)
			}
		}
		if spec.JSON != nil {
			switch {
			case spec.JSON.File == "":
				report(label, "json.file is required")
			case !root.Contains(spec.JSON.File):
				report(label, "json.file %s is outside the project root", spec.JSON.File)
			}
			if len(spec.JSON.Set) == 0 {
				report(label, "json.set is empty")
			}
		}
	}

	if len(problems) == 0 {
		return nil
	}
	err := errors.New(errors.ErrJobfileInvalid, strings.Join(problems, "; ")).
		WithDetail("problems", problems)
	if f.Path != "" {
		err = err.WithDetail("path", f.Path)
	}
	return err
}
