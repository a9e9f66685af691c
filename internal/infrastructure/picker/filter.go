package picker

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/h2non/filetype"
)

// ErrBadFilter is returned by ParseFilters for malformed input.
var ErrBadFilter = errors.New("picker: malformed filter")

// sniffLen is how much of a file filetype needs to recognise it.
const sniffLen = 262

// Filter restricts which files a Browser lists.
type Filter struct {
	Name     string
	Patterns []string // glob patterns matched case-insensitively against the base name
	// MIME, when set, admits files whose content sniffs to a type with this
	// prefix (e.g. "image/") even if no pattern matches their name.
	MIME string
}

// AllFiles matches every file.
func AllFiles() Filter {
	return Filter{Name: "All", Patterns: []string{"*"}}
}

// ImageFiles matches the formats the texture loader decodes.
func ImageFiles() Filter {
	return Filter{
		Name:     "Images",
		Patterns: []string{"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.tif", "*.tiff", "*.webp"},
		MIME:     "image/",
	}
}

// MatchName reports whether name matches one of the filter's patterns.
// A filter without patterns matches every name.
func (f Filter) MatchName(name string) bool {
	if len(f.Patterns) == 0 {
		return true
	}
	base := strings.ToLower(filepath.Base(name))
	for _, p := range f.Patterns {
		if ok, err := filepath.Match(strings.ToLower(p), base); err == nil && ok {
			return true
		}
	}
	return false
}

// Match reports whether the file at path passes the filter, sniffing its
// content when the name alone does not decide.
func (f Filter) Match(path string) bool {
	if f.MIME == "" {
		return f.MatchName(path)
	}
	if len(f.Patterns) > 0 && f.MatchName(path) {
		return true
	}
	mime, err := Sniff(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mime, f.MIME)
}

// Sniff returns the MIME type of the file at path, or "" if it is not
// recognised.
func Sniff(path string) (string, error) {
	fh, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "sniff %q", path)
	}
	defer fh.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(fh, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", errors.Wrapf(err, "sniff %q", path)
	}

	kind, err := filetype.Match(head[:n])
	if err != nil || kind == filetype.Unknown {
		return "", nil
	}
	return kind.MIME.Value, nil
}

// ParseFilters parses "Name:pat,pat[:mime];Name:pat..." as used on the
// command line and in config files, e.g. "Images:*.png,*.jpg:image/;All:*".
func ParseFilters(s string) ([]Filter, error) {
	var out []Filter
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) < 2 || len(fields) > 3 {
			return nil, errors.Wrapf(ErrBadFilter, "%q", part)
		}

		f := Filter{Name: strings.TrimSpace(fields[0])}
		if f.Name == "" {
			return nil, errors.Wrapf(ErrBadFilter, "%q: empty name", part)
		}
		for _, p := range strings.Split(fields[1], ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			if _, err := filepath.Match(p, ""); err != nil {
				return nil, errors.Wrapf(ErrBadFilter, "%q: pattern %q", part, p)
			}
			f.Patterns = append(f.Patterns, p)
		}
		if len(fields) == 3 {
			f.MIME = strings.TrimSpace(fields[2])
		}
		if len(f.Patterns) == 0 && f.MIME == "" {
			return nil, errors.Wrapf(ErrBadFilter, "%q: no patterns", part)
		}
		out = append(out, f)
	}
	return out, nil
}
