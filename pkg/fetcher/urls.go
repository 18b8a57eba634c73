package fetcher

import (
	"errors"
	"net/url"
	"strings"

	"github.com/dtnitsch/whatif/models"
)

var errEmptySource = errors.New("empty source attribute")

// ResolveAssetURL pins an image source to the archive's scheme and host.
// Sources show up as bare paths, relative paths, protocol-relative URLs and
// full URLs on http or https; only the path is kept.
func ResolveAssetURL(baseURL, src string) (string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return "", &models.ParseError{What: "base url " + baseURL, Err: err}
	}

	path := assetPath(strings.TrimSpace(src))
	if path == "" || path == "/" {
		return "", &models.ParseError{What: "asset source " + src, Err: errEmptySource}
	}

	out := url.URL{Scheme: base.Scheme, Host: base.Host, Path: path}
	return out.String(), nil
}

func assetPath(src string) string {
	var path string
	if u, err := url.Parse(src); err == nil {
		path = u.Path
	} else {
		path = stripOrigin(src)
	}
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

// stripOrigin drops scheme, host, query and fragment from a source that
// url.Parse rejects.
func stripOrigin(src string) string {
	if i := strings.Index(src, "://"); i >= 0 {
		src = src[i+3:]
		j := strings.Index(src, "/")
		if j < 0 {
			return ""
		}
		src = src[j:]
	} else if strings.HasPrefix(src, "//") {
		src = strings.TrimPrefix(src, "//")
		j := strings.Index(src, "/")
		if j < 0 {
			return ""
		}
		src = src[j:]
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	return src
}
