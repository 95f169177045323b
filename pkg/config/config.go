package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v2"
)

// ErrBadConfig is wrapped by every error caused by a malformed document.
var ErrBadConfig = errors.New("bad configuration")

// Document describes one map: a generator, the modifiers applied in order,
// and an optional finalizer that scores the result.
type Document struct {
	// Seed is optional; a nil seed asks for a random one.
	Seed      *uint64    `toml:"seed,omitempty" yaml:"seed,omitempty"`
	Generator *Generator `toml:"generator" yaml:"generator"`
	Modifiers []Stage    `toml:"modifiers,omitempty" yaml:"modifiers,omitempty"`
	Finalizer *Stage     `toml:"finalizer,omitempty" yaml:"finalizer,omitempty"`
}

type Size struct {
	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"`
}

type Generator struct {
	Name       string     `toml:"name" yaml:"name"`
	Size       Size       `toml:"size" yaml:"size"`
	Parameters Parameters `toml:"parameters,omitempty" yaml:"parameters,omitempty"`
	Output     *Output    `toml:"output,omitempty" yaml:"output,omitempty"`
}

// Stage is a modifier or a finalizer.
type Stage struct {
	Name       string     `toml:"name" yaml:"name"`
	Parameters Parameters `toml:"parameters,omitempty" yaml:"parameters,omitempty"`
	Output     *Output    `toml:"output,omitempty" yaml:"output,omitempty"`
}

type Output struct {
	Filename   string     `toml:"filename" yaml:"filename"`
	Type       string     `toml:"type" yaml:"type"`
	Parameters Parameters `toml:"parameters,omitempty" yaml:"parameters,omitempty"`
}

type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf picks the document format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, fmt.Errorf("%w: unsupported document extension %q", ErrBadConfig, filepath.Ext(path))
	}
}

// Load reads, decodes and validates the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode parses a document without validating it.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse toml: %w", ErrBadConfig, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: failed to parse yaml: %w", ErrBadConfig, err)
		}
	default:
		return nil, fmt.Errorf("%w: unknown format %d", ErrBadConfig, format)
	}

	doc.normalize()
	return &doc, nil
}

// Encode writes the document in the requested format.
func (d *Document) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatTOML:
		encoder := toml.NewEncoder(w)
		encoder.Indent = ""
		return encoder.Encode(d)
	case FormatYAML:
		data, err := yaml.Marshal(d)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %d", format)
	}
}

// normalize rewrites yaml's map[interface{}]interface{} tables so that both
// decoders yield the same parameter shapes.
func (d *Document) normalize() {
	if d.Generator != nil {
		d.Generator.Parameters = normalizeParameters(d.Generator.Parameters)
		d.Generator.Output.normalize()
	}
	for i := range d.Modifiers {
		d.Modifiers[i].normalize()
	}
	if d.Finalizer != nil {
		d.Finalizer.normalize()
	}
}

func (s *Stage) normalize() {
	s.Parameters = normalizeParameters(s.Parameters)
	s.Output.normalize()
}

func (o *Output) normalize() {
	if o != nil {
		o.Parameters = normalizeParameters(o.Parameters)
	}
}

func normalizeParameters(p Parameters) Parameters {
	for k, v := range p {
		p[k] = normalizeValue(v)
	}
	return p
}

func normalizeValue(v any) any {
	switch v := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]any, len(v))
		for k, item := range v {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case map[string]interface{}:
		for k, item := range v {
			v[k] = normalizeValue(item)
		}
		return v
	case []interface{}:
		for i, item := range v {
			v[i] = normalizeValue(item)
		}
		return v
	default:
		return v
	}
}
