package api

import "net/url"

// CacheKey canonicalizes a request path into a cache key. Query
// parameters are re-encoded in sorted order so "/p?a=1&b=2" and
// "/p?b=2&a=1" share one entry. An unparseable path is used verbatim.
func CacheKey(rawPath string) string {
	u, err := url.Parse(rawPath)
	if err != nil {
		return rawPath
	}
	q := u.Query()
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}
