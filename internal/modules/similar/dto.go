package similar

import (
	"time"

	"brokercrm/internal/domain"
)

const DefaultLimit = 30

// Confidence labels, monotonic in score.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

// Merge blockers surfaced per candidate. They never lower the score; the
// caller uses them to disable the merge action for a match.
const (
	BlockerDifferentClient = "different_client"
	BlockerDealClosed      = "deal_closed"
	BlockerDealDeleted     = "deal_deleted"
)

type Request struct {
	TargetDealID   int64 `json:"target_deal_id" validate:"required"`
	Limit          int   `json:"limit,omitempty"`
	IncludeSelf    bool  `json:"include_self,omitempty"`
	IncludeClosed  bool  `json:"include_closed,omitempty"`
	IncludeDeleted bool  `json:"include_deleted,omitempty"`
}

type DealSummary struct {
	ID        int64             `json:"id"`
	Title     string            `json:"title"`
	Status    domain.DealStatus `json:"status"`
	ClientID  *int64            `json:"client_id,omitempty"`
	SellerID  int64             `json:"seller_id"`
	CreatedAt time.Time         `json:"created_at"`
	DeletedAt *time.Time        `json:"deleted_at,omitempty"`
}

type Candidate struct {
	Deal          DealSummary `json:"deal"`
	Score         int         `json:"score"`
	Confidence    string      `json:"confidence"`
	Reasons       []string    `json:"reasons"`
	MatchedFields []string    `json:"matched_fields"`
	MergeBlockers []string    `json:"merge_blockers"`
}

type Meta struct {
	TotalCandidates int `json:"total_candidates"`
	AboveFloor      int `json:"above_floor"`
	Returned        int `json:"returned"`
}

type Result struct {
	Target     DealSummary `json:"target"`
	Candidates []Candidate `json:"candidates"`
	Meta       Meta        `json:"meta"`
}

func summarize(d *domain.Deal) DealSummary {
	return DealSummary{
		ID:        d.ID,
		Title:     d.Title,
		Status:    d.Status,
		ClientID:  d.ClientID,
		SellerID:  d.SellerID,
		CreatedAt: d.CreatedAt,
		DeletedAt: d.DeletedAt,
	}
}
