package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// LocationKind tags which shape a Location decoded as.
type LocationKind int

const (
	LocationHTTP LocationKind = iota
	LocationGitHub
	LocationLocal
)

// PatchSpec names a unified-diff file to apply to a staged mod tree.
type PatchSpec struct {
	Relative string   `yaml:"relative"`
	Encoding Encoding `yaml:"encoding"`
}

// ReplaceOp runs a regex substitution over a set of globbed files.
type ReplaceOp struct {
	FileGlobs []string `yaml:"file_globs"`
	Replace   string   `yaml:"replace"`
	With      string   `yaml:"with"`
}

// Encoding is the declared text encoding of a patch target file.
type Encoding int

const (
	EncodingUTF8 Encoding = iota
	EncodingWin1252
	EncodingWin1251
)

// UnmarshalYAML decodes the encoding name, defaulting to UTF8 when absent.
func (e *Encoding) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: encoding must be a string: %w", node.Line, err)
	}
	switch s {
	case "", "UTF8":
		*e = EncodingUTF8
	case "WIN1252":
		*e = EncodingWin1252
	case "WIN1251":
		*e = EncodingWin1251
	default:
		return fmt.Errorf("line %d: unknown encoding %q", node.Line, s)
	}
	return nil
}

// MarshalYAML round-trips the encoding back to its name, used by reverse.
func (e Encoding) MarshalYAML() (interface{}, error) {
	switch e {
	case EncodingWin1252:
		return "WIN1252", nil
	case EncodingWin1251:
		return "WIN1251", nil
	default:
		return "UTF8", nil
	}
}

// HTTPLocation fetches an archive from a plain URL.
type HTTPLocation struct {
	URL     string      `yaml:"url"`
	Rename  string      `yaml:"rename"`
	Patch   []PatchSpec `yaml:"patch"`
	Replace []ReplaceOp `yaml:"replace"`
}

// GitHubLocation fetches an archive from a GitHub repository, identified by
// exactly one of Release+Asset, Tag, Commit or Branch.
type GitHubLocation struct {
	GithubUser string      `yaml:"github_user"`
	Repository string      `yaml:"repository"`
	Release    string      `yaml:"release"`
	Asset      string      `yaml:"asset"`
	Tag        string      `yaml:"tag"`
	Commit     string      `yaml:"commit"`
	Branch     string      `yaml:"branch"`
	Auth       string      `yaml:"auth"`
	Patch      []PatchSpec `yaml:"patch"`
	Replace    []ReplaceOp `yaml:"replace"`
}

// Coordinate identifies which of the four GitHub reference shapes is set,
// along with the string that names it, for cache-key and fetch purposes.
func (g GitHubLocation) Coordinate() (kind, value string, err error) {
	set := 0
	if g.Release != "" {
		set++
		kind, value = "release", g.Release+"/"+g.Asset
	}
	if g.Tag != "" {
		set++
		kind, value = "tag", g.Tag
	}
	if g.Commit != "" {
		set++
		kind, value = "commit", g.Commit
	}
	if g.Branch != "" {
		set++
		kind, value = "branch", g.Branch
	}
	if set != 1 {
		return "", "", fmt.Errorf("github location must set exactly one of release+asset, tag, commit, branch")
	}
	if kind == "release" && g.Asset == "" {
		return "", "", fmt.Errorf("github location: release requires asset")
	}
	return kind, value, nil
}

// LocalLocation uses a path already present on disk, in place.
type LocalLocation struct {
	Path    string      `yaml:"path"`
	Patch   []PatchSpec `yaml:"patch"`
	Replace []ReplaceOp `yaml:"replace"`
}

// Location is the tagged union of a mod's origin. Exactly one of the
// pointer fields below is non-nil after decoding; Kind names which.
type Location struct {
	Kind   LocationKind
	HTTP   *HTTPLocation
	GitHub *GitHubLocation
	Local  *LocalLocation
}

// locationShape is the set of keys used to disambiguate which Location
// variant a YAML mapping encodes.
type locationShape struct {
	URL        *string `yaml:"url"`
	GithubUser *string `yaml:"github_user"`
	Repository *string `yaml:"repository"`
	Path       *string `yaml:"path"`
}

// UnmarshalYAML dispatches on the mapping's keys: github_user+repository
// means GitHub, url means HTTP, path means Local. Mixed or unrecognized
// shapes are a manifest error.
func (l *Location) UnmarshalYAML(node *yaml.Node) error {
	var shape locationShape
	if err := node.Decode(&shape); err != nil {
		return fmt.Errorf("line %d: decoding location: %w", node.Line, err)
	}

	switch {
	case shape.GithubUser != nil || shape.Repository != nil:
		if err := rejectUnknownKeys(node, "github_user", "repository", "release", "asset", "tag", "commit", "branch", "auth", "patch", "replace"); err != nil {
			return err
		}
		var gh GitHubLocation
		if err := node.Decode(&gh); err != nil {
			return fmt.Errorf("line %d: decoding github location: %w", node.Line, err)
		}
		if _, _, err := gh.Coordinate(); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		l.Kind = LocationGitHub
		l.GitHub = &gh
	case shape.URL != nil:
		if err := rejectUnknownKeys(node, "url", "rename", "patch", "replace"); err != nil {
			return err
		}
		var h HTTPLocation
		if err := node.Decode(&h); err != nil {
			return fmt.Errorf("line %d: decoding http location: %w", node.Line, err)
		}
		l.Kind = LocationHTTP
		l.HTTP = &h
	case shape.Path != nil:
		if err := rejectUnknownKeys(node, "path", "patch", "replace"); err != nil {
			return err
		}
		var loc LocalLocation
		if err := node.Decode(&loc); err != nil {
			return fmt.Errorf("line %d: decoding local location: %w", node.Line, err)
		}
		l.Kind = LocationLocal
		l.Local = &loc
	default:
		return fmt.Errorf("line %d: location must be one of http (url), github (github_user/repository) or local (path)", node.Line)
	}

	return nil
}

// MarshalYAML re-emits whichever variant is populated.
func (l Location) MarshalYAML() (interface{}, error) {
	switch l.Kind {
	case LocationHTTP:
		return l.HTTP, nil
	case LocationGitHub:
		return l.GitHub, nil
	case LocationLocal:
		return l.Local, nil
	default:
		return nil, fmt.Errorf("location has no populated variant")
	}
}

// Patch returns the patch specs for whichever variant is set.
func (l *Location) Patch() []PatchSpec {
	switch l.Kind {
	case LocationHTTP:
		return l.HTTP.Patch
	case LocationGitHub:
		return l.GitHub.Patch
	case LocationLocal:
		return l.Local.Patch
	default:
		return nil
	}
}

// ReplaceOps returns the replace specs for whichever variant is set.
func (l *Location) ReplaceOps() []ReplaceOp {
	switch l.Kind {
	case LocationHTTP:
		return l.HTTP.Replace
	case LocationGitHub:
		return l.GitHub.Replace
	case LocationLocal:
		return l.Local.Replace
	default:
		return nil
	}
}
