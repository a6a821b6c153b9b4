package calendar

import (
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// LinkLabel decides how a field value is shown. Anything containing a dot is
// treated as a link and labelled with its host, minus "www.", decoded from
// punycode. Values that do not parse as URLs keep their raw text.
func LinkLabel(raw string) (label string, isLink bool) {
	v := strings.TrimSpace(raw)
	if !strings.Contains(v, ".") {
		return raw, false
	}

	u, err := url.Parse(Href(v))
	if err != nil || u.Hostname() == "" {
		return raw, true
	}
	host := strings.Replace(u.Hostname(), "www.", "", 1)
	if decoded, err := idna.ToUnicode(host); err == nil {
		host = decoded
	}
	return host, true
}

// Href makes raw usable as a link target.
func Href(raw string) string {
	v := strings.TrimSpace(raw)
	if strings.HasPrefix(v, "http") {
		return v
	}
	return "https://" + v
}
