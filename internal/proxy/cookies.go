package proxy

import (
	"sort"
	"strings"
)

// ParseCookieHeader parses the proxy's synthetic cookie header: pairs joined
// by "; ", each "name=value". Parts without "=" or with an empty name are
// skipped. Returns an empty map for an empty header.
func ParseCookieHeader(header string) map[string]string {
	cookies := make(map[string]string)
	if header == "" {
		return cookies
	}
	for _, part := range strings.Split(header, "; ") {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			continue
		}
		cookies[name] = value
	}
	return cookies
}

// FormatCookieHeader renders a cookie map as a Cookie header value. Names are
// sorted so the same map always produces the same header.
func FormatCookieHeader(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+cookies[name])
	}
	return strings.Join(pairs, "; ")
}

// MergeCookies copies every entry of delta into dst and returns dst. A nil
// dst is allocated first, so MergeCookies(nil, delta) is valid.
func MergeCookies(dst, delta map[string]string) map[string]string {
	if dst == nil {
		dst = make(map[string]string, len(delta))
	}
	for name, value := range delta {
		dst[name] = value
	}
	return dst
}
