package resolve

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
)

// Kind is the kind of location a resource lives at.
type Kind int

const (
	LocalFile Kind = iota
	RemoteURL
	DataURI
)

func (k Kind) String() string {
	switch k {
	case LocalFile:
		return "local_file"
	case RemoteURL:
		return "remote_url"
	case DataURI:
		return "data_uri"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Resource is a resolved image reference.
//
// For LocalFile, Locator is an absolute, cleaned, alias-substituted path.
// For RemoteURL, Locator is the URL. For DataURI, Locator is a stable
// content identifier and Data holds the decoded payload.
type Resource struct {
	Kind    Kind           `json:"kind"`
	Locator string         `json:"locator"`
	Origin  string         `json:"origin,omitempty"` // file the reference was found in
	Data    []byte         `json:"-"`
	MIME    string         `json:"mime,omitempty"`
	Format  imaging.Format `json:"-"` // Unsupported for extensionless remote URLs
}

// Alias rewrites a leading path prefix. Replacement may contain ${name}
// placeholders expanded from Options.Variables.
type Alias struct {
	Prefix      string `json:"prefix"`
	Replacement string `json:"replacement"`
}

// Options tune resolution.
type Options struct {
	// BestEffort accepts remote URLs without an image extension. Their format
	// is only known after fetching.
	BestEffort bool

	// Variables expand ${name} placeholders in alias replacements.
	Variables map[string]string

	// Origin is recorded on the resource for diagnostics.
	Origin string
}

// Resolve turns a raw reference into a Resource.
//
// currentFileDir anchors relative paths; when it is empty, relative references
// cannot be resolved. Failures are *failure.Error values of kind KindResolve.
func Resolve(raw, currentFileDir string, aliases []Alias, opts Options) (*Resource, error) {
	ref := StripQuotes(raw)
	if ref == "" {
		return nil, failure.New(failure.KindResolve, "empty image reference")
	}
	lower := strings.ToLower(ref)

	switch {
	case strings.HasPrefix(lower, "data:"):
		mime, data, err := ParseDataURI(ref)
		if err != nil {
			return nil, err
		}
		return &Resource{
			Kind:    DataURI,
			Locator: DataLocator(mime, data),
			Origin:  opts.Origin,
			Data:    data,
			MIME:    mime,
			Format:  imaging.FormatFromMIME(mime),
		}, nil

	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return resolveRemote(ref, opts)

	case strings.HasPrefix(lower, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, failure.Wrap(failure.KindResolve, "parse file URL", err)
		}
		// Only local files can be read; file://localhost/p is the same as file:///p.
		if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
			return nil, failure.New(failure.KindResolve, "file URL %q names host %q", ref, u.Host)
		}
		if u.Path == "" {
			return nil, failure.New(failure.KindResolve, "file URL %q has no path", ref)
		}
		return localResource(u.Path, opts)
	}

	p := substituteAlias(ref, aliases, opts.Variables)
	if !filepath.IsAbs(p) {
		if currentFileDir == "" {
			return nil, failure.New(failure.KindResolve, "relative path %q without a file location", ref)
		}
		p = filepath.Join(currentFileDir, p)
	}
	return localResource(p, opts)
}

func resolveRemote(ref string, opts Options) (*Resource, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, failure.Wrap(failure.KindResolve, "parse URL", err)
	}
	if u.Host == "" {
		return nil, failure.New(failure.KindResolve, "URL %q has no host", ref)
	}
	format := imaging.FormatFromPath(u.Path)
	if format == imaging.Unsupported {
		if !opts.BestEffort || imaging.HasIgnoredExtension(u.Path) {
			return nil, failure.New(failure.KindResolve, "URL %q has no image extension", ref)
		}
	}
	return &Resource{Kind: RemoteURL, Locator: u.String(), Origin: opts.Origin, Format: format}, nil
}

func localResource(p string, opts Options) (*Resource, error) {
	p = filepath.Clean(p)
	format := imaging.FormatFromPath(p)
	if format == imaging.Unsupported {
		return nil, failure.New(failure.KindResolve, "%q has no image extension", p)
	}
	return &Resource{Kind: LocalFile, Locator: p, Origin: opts.Origin, Format: format}, nil
}

// StripQuotes removes string delimiters and url(...) wrappers around a reference.
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 5 && strings.EqualFold(s[:4], "url(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[4 : len(s)-1])
	}
	if len(s) >= 2 && s[0] == '<' && s[len(s)-1] == '>' {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(strings.Trim(s, "\"'`"))
}

func isSep(c byte) bool {
	return c == '/' || c == '\\'
}

// substituteAlias rewrites the directory part of p with the first matching alias.
// The file name segment is never rewritten.
func substituteAlias(p string, aliases []Alias, vars map[string]string) string {
	i := strings.LastIndexAny(p, `/\`)
	if i <= 0 {
		return p
	}
	dir, file := p[:i], p[i:]
	for _, a := range aliases {
		prefix := strings.TrimRight(a.Prefix, `/\`)
		if prefix == "" || !strings.HasPrefix(dir, prefix) {
			continue
		}
		rest := dir[len(prefix):]
		if rest != "" && !isSep(rest[0]) {
			continue
		}
		replacement := os.Expand(a.Replacement, func(name string) string {
			return vars[name]
		})
		trimmed := strings.TrimRight(replacement, `/\`)
		if trimmed == "" && replacement == "" {
			// Alias to the current directory.
			return strings.TrimLeft(rest+file, `/\`)
		}
		return trimmed + rest + file
	}
	return p
}
