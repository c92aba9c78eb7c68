// Package manifest decodes the declarative installation recipe: a manifest
// listing mods with their components, sources and per-mod transformations.
//
// Decoding uses gopkg.in/yaml.v3 with strict unknown-field rejection, but
// the sum-typed fields (Location, ComponentSelector) need their own
// UnmarshalYAML to dispatch on shape and to reject unknown keys with a
// document-location-annotated error, since yaml.v3's KnownFields only
// applies to struct decoding, not ad-hoc shape dispatch.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LangPreference is either a literal language name or a "#rx#<regex>" pattern
// selector, matched against weidu's reported language list.
type LangPreference string

// IsRegex reports whether the preference carries the #rx# regex marker.
func (p LangPreference) IsRegex() bool {
	return len(p) >= 4 && p[:4] == "#rx#"
}

// Pattern returns the regex source with the #rx# marker stripped. Only
// meaningful when IsRegex is true.
func (p LangPreference) Pattern() string {
	return string(p[4:])
}

// Global holds manifest-wide settings.
type Global struct {
	LangDir         string           `yaml:"lang_dir"`
	LangPreferences []LangPreference `yaml:"lang_preferences"`
	LocalPatches    string           `yaml:"local_patches"`
}

// Manifest is the immutable root of an installation recipe.
type Manifest struct {
	Version string   `yaml:"version"`
	Global  Global   `yaml:"global"`
	Modules []Module `yaml:"modules"`

	// dir is the directory the manifest file was loaded from; it anchors
	// relative Location/patch paths and is not part of the YAML document.
	dir string
}

// Module is one installation step: a mod plus the components to install
// from it.
type Module struct {
	Name           string             `yaml:"name"`
	Components     ComponentSelection `yaml:"components"`
	Location       *Location          `yaml:"location"`
	IgnoreWarnings bool               `yaml:"ignore_warnings"`
	Description    string             `yaml:"description"`
	AddConf        *AddConf           `yaml:"add_conf"`
}

// AddConf writes a verbatim configuration file into the staged mod tree.
type AddConf struct {
	FileName string `yaml:"file_name"`
	Content  string `yaml:"content"`
}

// Dir returns the directory the manifest was loaded from, used to resolve
// relative Location and patch paths.
func (m *Manifest) Dir() string {
	return m.dir
}

// PatchRoot returns the effective root for PatchSpec.Relative resolution:
// the manifest's directory, or dir/global.local_patches when set.
func (m *Manifest) PatchRoot() string {
	if m.Global.LocalPatches == "" {
		return m.dir
	}
	if filepath.IsAbs(m.Global.LocalPatches) {
		return m.Global.LocalPatches
	}
	return filepath.Join(m.dir, m.Global.LocalPatches)
}

// Load reads and strictly decodes a manifest file from path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}

	m.dir = filepath.Dir(path)
	if m.dir == "" {
		m.dir = "."
	}
	return &m, nil
}
