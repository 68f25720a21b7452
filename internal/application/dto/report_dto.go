package dto

// ImportRowError describes one rejected CSV row.
type ImportRowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// ImportResult summarizes a CSV product import. Existing SKUs are skipped,
// never overwritten, so re-importing an export leaves the catalog unchanged.
type ImportResult struct {
	Created int              `json:"created"`
	Skipped int              `json:"skipped"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}
