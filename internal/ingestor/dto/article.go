package dto

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Article is one raw article reference produced by the feed fetcher.
type Article struct {
	SourceName  string     `json:"source_name"`
	Title       string     `json:"title"`
	Link        string     `json:"link"`
	Published   string     `json:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Summary     string     `json:"summary"`
	Content     string     `json:"content"`
}

// HashIdentifier returns a stable identifier for the article, used to skip
// already-processed items across runs.
func (a *Article) HashIdentifier() string {
	sum := md5.Sum([]byte(a.Link + "|" + a.Published))
	return hex.EncodeToString(sum[:])
}
