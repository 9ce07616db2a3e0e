package config

import (
	"net/url"
	"strings"
)

// overrideParam is the launch-URL query parameter that overrides the
// backend base URL.
const overrideParam = "api"

// ResolveBaseURL determines the backend base URL. The launch URL's `api`
// query parameter wins when present and non-empty; otherwise the compiled-in
// default applies; otherwise the launch URL's own origin. The function never
// fails -- it always returns a usable (possibly wrong) string, empty only
// when no source yields anything at all.
//
// The result is trimmed of trailing slashes.
func ResolveBaseURL(launchURL, compiledDefault string) string {
	if u, err := url.Parse(launchURL); err == nil {
		if qp := u.Query().Get(overrideParam); qp != "" {
			return trimBase(qp)
		}
	}

	if compiledDefault != "" {
		return trimBase(compiledDefault)
	}

	if u, err := url.Parse(launchURL); err == nil && u.Scheme != "" && u.Host != "" {
		return trimBase(u.Scheme + "://" + u.Host)
	}

	return ""
}

// JoinURL joins a base URL and a path without ever producing doubled
// slashes, regardless of how either side is delimited.
func JoinURL(base, path string) string {
	return trimBase(base) + "/" + strings.TrimLeft(path, "/")
}

func trimBase(s string) string {
	return strings.TrimRight(s, "/")
}
