package catalog

import "time"

// HardCeiling bounds every result set regardless of what a storefront is configured to ask for.
const HardCeiling = 24

// DefaultTitle is used whenever every title source of a product comes up empty.
const DefaultTitle = "Product"

// RawCandidate is what a scan pass extracts for a single product anchor, nothing in it is
// validated yet.
type RawCandidate struct {
	URL    string
	Image  string
	Title  string
	Price  string
	Source string
}

type Product struct {
	URL    string `json:"url"`
	Image  string `json:"image"`
	Title  string `json:"title"`
	Price  string `json:"price"`
	Source string `json:"source,omitempty"`
}

// Snapshot is the persisted shape of a single harvest.
type Snapshot struct {
	UpdatedAt string    `json:"updated_at"`
	Active    bool      `json:"active"`
	Items     []Product `json:"items"`
}

const timestampLayout = "2006-01-02T15:04:05.000Z"

// NewSnapshot places items into a snapshot as-is, in order. Active is derived from the
// item count so the two can never disagree.
func NewSnapshot(now time.Time, items []Product) Snapshot {
	if items == nil {
		items = []Product{}
	}
	return Snapshot{
		UpdatedAt: now.UTC().Format(timestampLayout),
		Active:    len(items) > 0,
		Items:     items,
	}
}
