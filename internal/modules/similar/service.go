package similar

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"brokercrm/internal/domain"
)

// Signal weights. Tunable; only the relative ordering is contractual:
// a client+phone match must outrank any single weaker signal.
const (
	weightSameClient    = 40
	weightPhone         = 25
	weightTitleExact    = 20
	weightTitleOverlap  = 10
	weightInsuranceType = 15
	weightSeller        = 8
	weightExecutor      = 8
	weightCreatedNear   = 5

	// minScore is the floor a candidate must reach to appear in results.
	minScore = 1

	confidenceHighFrom   = 60
	confidenceMediumFrom = 30

	createdNearDays = 30
)

type DealReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Deal, error)
	GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Deal, error)
	Candidates(ctx context.Context, includeClosed, includeDeleted bool) ([]domain.Deal, error)
}

type ClientReader interface {
	GetByIDWithDeleted(ctx context.Context, id int64) (*domain.Client, error)
}

type QuoteReader interface {
	ListByDealWithDeleted(ctx context.Context, dealID int64) ([]domain.Quote, error)
}

// Service scores candidate deals for duplicate likelihood. It is a pure
// read: nothing is mutated no matter what the scores come out to be.
type Service struct {
	deals   DealReader
	clients ClientReader
	quotes  QuoteReader
}

func NewService(deals DealReader, clients ClientReader, quotes QuoteReader) *Service {
	return &Service{deals: deals, clients: clients, quotes: quotes}
}

// FindSimilar ranks candidates against the target deal. The candidate
// pool is assumed to be access-filtered already. Output is deterministic:
// same inputs and data always give the same ordering and scores.
func (s *Service) FindSimilar(ctx context.Context, req Request) (*Result, error) {
	if req.TargetDealID == 0 {
		return nil, ErrValidation
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	target, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}

	targetCtx, err := s.loadDealContext(ctx, target)
	if err != nil {
		return nil, err
	}

	pool, err := s.deals.Candidates(ctx, req.IncludeClosed, req.IncludeDeleted)
	if err != nil {
		return nil, err
	}

	clientCache := map[int64]*domain.Client{}
	if targetCtx.client != nil {
		clientCache[targetCtx.client.ID] = targetCtx.client
	}

	scored := make([]Candidate, 0, len(pool))
	total := 0
	for i := range pool {
		candidate := &pool[i]
		if candidate.ID == target.ID && !req.IncludeSelf {
			continue
		}
		total++

		candCtx, err := s.loadDealContextCached(ctx, candidate, clientCache)
		if err != nil {
			return nil, err
		}

		c := scoreCandidate(targetCtx, candCtx)
		if c.Score < minScore {
			continue
		}
		scored = append(scored, c)
	}

	// Score descending, then newest first, then id for full determinism.
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if !scored[i].Deal.CreatedAt.Equal(scored[j].Deal.CreatedAt) {
			return scored[i].Deal.CreatedAt.After(scored[j].Deal.CreatedAt)
		}
		return scored[i].Deal.ID < scored[j].Deal.ID
	})

	aboveFloor := len(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}

	return &Result{
		Target:     summarize(target),
		Candidates: scored,
		Meta: Meta{
			TotalCandidates: total,
			AboveFloor:      aboveFloor,
			Returned:        len(scored),
		},
	}, nil
}

func (s *Service) resolveTarget(ctx context.Context, req Request) (*domain.Deal, error) {
	var (
		target *domain.Deal
		err    error
	)
	if req.IncludeDeleted {
		target, err = s.deals.GetByIDWithDeleted(ctx, req.TargetDealID)
	} else {
		target, err = s.deals.GetByID(ctx, req.TargetDealID)
	}
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrDealNotFound
	}
	return target, nil
}

// dealContext carries the per-deal data the signals compare.
type dealContext struct {
	deal           *domain.Deal
	client         *domain.Client
	insuranceTypes map[string]bool
}

func (s *Service) loadDealContext(ctx context.Context, d *domain.Deal) (*dealContext, error) {
	return s.loadDealContextCached(ctx, d, map[int64]*domain.Client{})
}

func (s *Service) loadDealContextCached(ctx context.Context, d *domain.Deal, cache map[int64]*domain.Client) (*dealContext, error) {
	dc := &dealContext{deal: d, insuranceTypes: map[string]bool{}}

	if d.ClientID != nil {
		if cached, ok := cache[*d.ClientID]; ok {
			dc.client = cached
		} else {
			client, err := s.clients.GetByIDWithDeleted(ctx, *d.ClientID)
			if err != nil {
				return nil, err
			}
			cache[*d.ClientID] = client
			dc.client = client
		}
	}

	quotes, err := s.quotes.ListByDealWithDeleted(ctx, d.ID)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if t := strings.TrimSpace(strings.ToLower(q.InsuranceType)); t != "" {
			dc.insuranceTypes[t] = true
		}
	}
	return dc, nil
}

func scoreCandidate(target, cand *dealContext) Candidate {
	c := Candidate{
		Deal:          summarize(cand.deal),
		Reasons:       []string{},
		MatchedFields: []string{},
		MergeBlockers: []string{},
	}

	match := func(weight int, field, reason string) {
		c.Score += weight
		c.MatchedFields = append(c.MatchedFields, field)
		c.Reasons = append(c.Reasons, reason)
	}

	t, d := target.deal, cand.deal

	if t.ClientID != nil && d.ClientID != nil && *t.ClientID == *d.ClientID {
		match(weightSameClient, "client", "same client")
	}

	switch compareTitles(t.Title, d.Title) {
	case titleExact:
		match(weightTitleExact, "title", "identical title")
	case titleOverlap:
		match(weightTitleOverlap, "title", "overlapping title")
	}

	if target.client != nil && cand.client != nil && target.client.ID != cand.client.ID {
		if phonesMatch(target.client.Phone, cand.client.Phone) {
			match(weightPhone, "phone", fmt.Sprintf("same phone number %q", cand.client.Phone))
		}
	}

	if shared := sharedKey(target.insuranceTypes, cand.insuranceTypes); shared != "" {
		match(weightInsuranceType, "insurance_type", fmt.Sprintf("both have %s quotes", shared))
	}

	if t.SellerID != 0 && t.SellerID == d.SellerID {
		match(weightSeller, "seller", "same seller")
	}
	if t.ExecutorID != nil && d.ExecutorID != nil && *t.ExecutorID == *d.ExecutorID {
		match(weightExecutor, "executor", "same executor")
	}

	if daysApart(t.CreatedAt, d.CreatedAt) <= createdNearDays {
		match(weightCreatedNear, "created_at", fmt.Sprintf("created within %d days of each other", createdNearDays))
	}

	c.Confidence = confidenceFor(c.Score)

	if t.ClientID != nil && d.ClientID != nil && *t.ClientID != *d.ClientID {
		c.MergeBlockers = append(c.MergeBlockers, BlockerDifferentClient)
	}
	if d.IsClosed() {
		c.MergeBlockers = append(c.MergeBlockers, BlockerDealClosed)
	}
	if d.IsDeleted() {
		c.MergeBlockers = append(c.MergeBlockers, BlockerDealDeleted)
	}

	return c
}

func confidenceFor(score int) string {
	switch {
	case score >= confidenceHighFrom:
		return ConfidenceHigh
	case score >= confidenceMediumFrom:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

type titleMatch int

const (
	titleNone titleMatch = iota
	titleOverlap
	titleExact
)

// compareTitles is case- and whitespace-insensitive. Titles overlap when
// at least half of the shorter title's words appear in the other one.
func compareTitles(a, b string) titleMatch {
	na, nb := normalizeTitle(a), normalizeTitle(b)
	if na == "" || nb == "" {
		return titleNone
	}
	if na == nb {
		return titleExact
	}

	wordsA := strings.Fields(na)
	wordsB := strings.Fields(nb)
	setB := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		setB[w] = true
	}
	shared := 0
	for _, w := range wordsA {
		if setB[w] {
			shared++
		}
	}
	shorter := len(wordsA)
	if len(wordsB) < shorter {
		shorter = len(wordsB)
	}
	if shared > 0 && shared*2 >= shorter {
		return titleOverlap
	}
	return titleNone
}

func normalizeTitle(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// phonesMatch compares digits only, so "+7 900 000-00-01" equals
// "79000000001". Numbers long enough to carry a country prefix are also
// matched on their last ten digits.
func phonesMatch(a, b string) bool {
	da, db := digitsOnly(a), digitsOnly(b)
	if da == "" || db == "" {
		return false
	}
	if da == db {
		return true
	}
	if len(da) >= 10 && len(db) >= 10 {
		return da[len(da)-10:] == db[len(db)-10:]
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// sharedKey returns one deterministic shared key of two sets, or "".
func sharedKey(a, b map[string]bool) string {
	keys := make([]string, 0, len(a))
	for k := range a {
		if b[k] {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return keys[0]
}

func daysApart(a, b time.Time) int {
	d := a.Sub(b)
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}
