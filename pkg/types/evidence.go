package types

import "time"

// EvidenceItem is a single piece of evidence returned by a source.
type EvidenceItem struct {
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url,omitempty"`
	RetrievedAt time.Time `json:"retrieved_at"`
}

// EvidenceBundle is the ordered set of evidence items gathered for one trial.
// The set of item titles is the only thing the adjudicator trusts when
// checking citations for fabrication: a citation that matches no title in the
// bundle is unverifiable by construction.
type EvidenceBundle struct {
	Items      []EvidenceItem `json:"items"`
	GatheredAt time.Time      `json:"gathered_at"`
}

// Empty reports whether the bundle contains no items. An empty bundle is a
// legitimate data condition, not an error.
func (b *EvidenceBundle) Empty() bool {
	return len(b.Items) == 0
}

// Titles returns item titles in bundle order.
func (b *EvidenceBundle) Titles() []string {
	titles := make([]string, len(b.Items))
	for i, item := range b.Items {
		titles[i] = item.Title
	}
	return titles
}

// TitleSet returns the set of item titles for citation cross-referencing.
func (b *EvidenceBundle) TitleSet() map[string]bool {
	set := make(map[string]bool, len(b.Items))
	for _, item := range b.Items {
		set[item.Title] = true
	}
	return set
}
