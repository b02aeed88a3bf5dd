package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var whitespace = regexp.MustCompile(`\s+`)

// CollapseWhitespace squeezes runs of whitespace into single spaces and trims the result.
func CollapseWhitespace(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(input, " "))
}

// NormalizeEmail trims and lower-cases an address for deduplication.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// BuildSubscriberID hashes the normalized email so repeated signups map to one document.
func BuildSubscriberID(email string) string {
	s := sha1.Sum([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(s[:])
}

// NormalizeDate parses a YYYY-MM-DD date. An empty input resolves to today in loc.
func NormalizeDate(raw string, now time.Time, loc *time.Location) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if loc != nil {
			now = now.In(loc)
		}
		return now.Format(time.DateOnly), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return "", err
	}
	return d.Format(time.DateOnly), nil
}

// DisplayDate renders a YYYY-MM-DD date as "Jan 02 2006".
func DisplayDate(iso string) string {
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return d.Format("Jan 02 2006")
}

// EmbedURL turns a highlight media link into an iframe source. Streamable
// share links become their /e/ embed form. Anything that is not an absolute
// http(s) URL yields "" and must not be embedded.
func EmbedURL(media string) string {
	u, err := url.Parse(strings.TrimSpace(media))
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	if host == "streamable.com" && !strings.HasPrefix(u.Path, "/e/") {
		u.Path = "/e" + u.Path
	}
	return u.String()
}

// SafeNextPath accepts only same-site absolute paths for redirects.
func SafeNextPath(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return raw
}
