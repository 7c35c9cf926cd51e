// Package dedup tracks which job detail pages have already been traversed
// during one crawl run.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/use-agent/jobscout/models"
)

// Guard is a grow-only set of normalised detail URLs.
// It is owned by a single crawl and is not safe for concurrent use.
type Guard struct {
	seen map[string]struct{}
}

// NewGuard returns an empty Guard.
func NewGuard() *Guard {
	return &Guard{seen: make(map[string]struct{})}
}

// Contains reports whether rawURL was inserted before.
func (g *Guard) Contains(rawURL string) bool {
	_, ok := g.seen[Normalize(rawURL)]
	return ok
}

// Insert records rawURL and reports whether it was new.
func (g *Guard) Insert(rawURL string) bool {
	k := Normalize(rawURL)
	if _, ok := g.seen[k]; ok {
		return false
	}
	g.seen[k] = struct{}{}
	return true
}

// Len returns the number of distinct URLs recorded.
func (g *Guard) Len() int {
	return len(g.seen)
}

// Normalize canonicalises a detail URL so revisits map to the same identity:
// scheme and host are lower-cased, query and fragment dropped, and a
// trailing slash trimmed. Unparseable input is only trimmed.
func Normalize(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return strings.TrimRight(s, "/")
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	return u.String()
}

// Resolve turns href into an absolute URL relative to base.
// It returns href unchanged when either side fails to parse.
func Resolve(base, href string) string {
	h, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	b, err := url.Parse(base)
	if err != nil || b.Host == "" {
		return h.String()
	}
	return b.ResolveReference(h).String()
}

// Key returns a stable identity for a job record: the normalised detail URL
// when known, otherwise a hash over title, company and creation date.
func Key(j *models.JobRecord) string {
	if j.HasURL() {
		return Normalize(j.DetailURL)
	}
	sum := sha256.Sum256([]byte(j.Title + "|" + j.Company + "|" + j.CreationDate))
	return "anon:" + hex.EncodeToString(sum[:8])
}
