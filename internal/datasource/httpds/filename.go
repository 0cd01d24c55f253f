package httpds

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"path"
	"strings"
)

// HashString returns a stable SHA1 hex digest of s. It is the fallback for
// URLs that carry no usable basename.
func HashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}

// LocalFileName derives the local filename for a URL: the final path segment
// after stripping trailing slashes. URLs that cannot be parsed or have no
// path segment fall back to a hash of the whole URL so that the download
// still lands somewhere deterministic.
func LocalFileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return HashString(rawURL)
	}
	base := path.Base(strings.TrimRight(u.Path, "/"))
	if base == "" || base == "." || base == "/" {
		return HashString(rawURL)
	}
	return base
}
