package domain

import (
	"net/url"
	"strings"
)

// CanonicalLink builds the pretty public address for a project:
// https://{host}/{domain_user}/{domain_call}.
func CanonicalLink(host string, p Project) string {
	origin := host
	if origin != "" && !strings.HasPrefix(origin, "http") {
		origin = "https://" + origin
	}
	return origin + "/" + url.PathEscape(p.DomainUser) + "/" + url.PathEscape(p.DomainCall)
}

// FallbackLink builds the query-string form that works without rewrite rules:
// {origin}/call?user=...&call=...
func FallbackLink(origin string, p Project) string {
	q := url.Values{}
	q.Set("user", p.DomainUser)
	q.Set("call", p.DomainCall)
	return origin + "/call?" + q.Encode()
}
