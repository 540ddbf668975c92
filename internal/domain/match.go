package domain

// CandidateScore is one product's score against a listing title
type CandidateScore struct {
	ProductName string `json:"productName"`
	Model       string `json:"model"`
	Family      string `json:"family,omitempty"`
	Score       int    `json:"score"`
}

// MatchResult represents the outcome of routing one listing
type MatchResult struct {
	Matched     bool             `json:"matched"`
	ProductName string           `json:"productName,omitempty"`
	Score       int              `json:"score,omitempty"`
	Candidates  []CandidateScore `json:"candidates,omitempty"` // ranked, zero scores removed
	// Cached reports that the routing decision came from the cache. Cached
	// results carry the winner's score but no Candidates: the other
	// products were not scored.
	Cached      bool             `json:"cached"`
}

// ScoreRequest asks for candidate scores without recording a match
type ScoreRequest struct {
	Title        string `json:"title" binding:"required"`
	Manufacturer string `json:"manufacturer" binding:"required"`
}

// ProductSummary is a product with its current number of matched listings
type ProductSummary struct {
	Name         string `json:"productName"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Family       string `json:"family,omitempty"`
	Listings     int    `json:"listings"`
}

// ProductResult is one line of the results file
type ProductResult struct {
	ProductName string     `json:"product_name"`
	Listings    []*Listing `json:"listings"`
}
