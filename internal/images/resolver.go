// Package images resolves catalog filenames to displayable images. A
// static configuration flag selects local files under a base directory or
// URLs under a base URL - never both, never per-record.
package images

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Mode selects where image files live.
type Mode string

const (
	ModeLocal Mode = "local"
	ModeURL   Mode = "url"
)

// ParseMode validates a raw mode value.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case ModeLocal, "":
		return ModeLocal, nil
	case ModeURL:
		return ModeURL, nil
	default:
		return "", fmt.Errorf("invalid image mode %q (expected local or url)", raw)
	}
}

// Resolver maps catalog filenames to what the browser should load.
type Resolver struct {
	mode     Mode
	basePath string // local mode: directory holding the image files
	baseURL  string // url mode: prefix for absolute image URLs
}

func NewResolver(mode Mode, basePath, baseURL string) *Resolver {
	return &Resolver{
		mode:     mode,
		basePath: basePath,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
	}
}

// URLMode reports whether images are served from an external URL base.
func (r *Resolver) URLMode() bool {
	return r.mode == ModeURL
}

// DisplayURL returns the URL the frontend should render for a filename:
// the configured external base in URL mode, the service's own image
// endpoint in local mode.
func (r *Resolver) DisplayURL(filename string) string {
	if r.mode == ModeURL {
		return r.baseURL + "/" + url.PathEscape(filename)
	}
	return "/api/v1/images/" + url.PathEscape(filename)
}

// LocalPath resolves a filename inside the base directory. Filenames are
// opaque catalog references, so anything that would escape the base
// directory is rejected.
func (r *Resolver) LocalPath(filename string) (string, error) {
	if r.mode != ModeLocal {
		return "", fmt.Errorf("images are served from %s, not local files", r.baseURL)
	}
	cleaned := path.Clean("/" + filename)
	if cleaned == "/" || strings.Contains(filename, "..") {
		return "", fmt.Errorf("invalid image filename %q", filename)
	}
	return filepath.Join(r.basePath, filepath.FromSlash(cleaned)), nil
}
