package memory

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"
)

// DefaultQueryLimit is the number of memories returned when a query does not
// set its own limit.
const DefaultQueryLimit = 10

// DefaultContextLimit is the number of memories rendered into a context
// block when the caller does not set a limit.
const DefaultContextLimit = 5

// DefaultRecencyHorizonDays is the e-folding time of the recency decay: an
// item this many days old scores ≈ 0.37, an item from today ≈ 1.0.
const DefaultRecencyHorizonDays = 30.0

// TimeRange bounds a query to items whose source turn occurred within
// [From, To], inclusive.
type TimeRange struct {
	From time.Time
	To   time.Time
}

// Query is an ephemeral retrieval request.
type Query struct {
	Keywords      []string
	TimeRange     *TimeRange // nil = no time filter
	Kinds         []Kind     // empty = no kind filter
	MinImportance float64
	Limit         int // ≤ 0 → DefaultQueryLimit
}

// ScoredMemory pairs an item with its retrieval scores.
type ScoredMemory struct {
	Item           Item
	RelevanceScore float64 // keyword overlap, normalized to [0,1]
	RecencyScore   float64 // exponential time decay, in (0,1]
	CombinedScore  float64 // 0.7·relevance + 0.3·recency
}

// Retriever scores and ranks stored memories by keyword relevance and
// time-decayed recency. It reads a single consistent snapshot per query via
// one LoadItems call and owns no persistence logic.
type Retriever struct {
	Store       Store
	HorizonDays float64 // ≤ 0 → DefaultRecencyHorizonDays
	Logger      *slog.Logger

	// now is injectable for tests; nil means time.Now.
	now func() time.Time
}

// NewRetriever creates a Retriever over the given store.
// If logger is nil, the default slog logger is used.
func NewRetriever(store Store, logger *slog.Logger) *Retriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{
		Store:       store,
		HorizonDays: DefaultRecencyHorizonDays,
		Logger:      logger,
	}
}

// Search returns the user's memories matching q, ordered by descending
// combined score and truncated to the query limit. Equal scores order
// most-recent-first.
//
// A store failure degrades to an empty result: missing memories are a safe
// state, and retrieval must never take the host conversation down with it.
func (r *Retriever) Search(ctx context.Context, userID string, q Query) []ScoredMemory {
	items, err := r.Store.LoadItems(ctx, userID)
	if err != nil {
		r.Logger.Warn("retriever: load failed, returning no memories",
			"user_id", userID, "err", err)
		return nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	now := r.clock()

	var scored []ScoredMemory
	for _, item := range items {
		if !q.matches(item) {
			continue
		}

		rel := relevanceScore(item, q.Keywords)
		rec := r.recencyScore(now, item.Timestamp)
		scored = append(scored, ScoredMemory{
			Item:           item,
			RelevanceScore: rel,
			RecencyScore:   rec,
			CombinedScore:  0.7*rel + 0.3*rec,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].CombinedScore != scored[j].CombinedScore {
			return scored[i].CombinedScore > scored[j].CombinedScore
		}
		return scored[i].Item.Timestamp.After(scored[j].Item.Timestamp)
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

// GenerateContext renders the top memories for the keywords as a numbered,
// human-readable block for direct inclusion in a prompt. Returns the empty
// string when no memories qualify.
func (r *Retriever) GenerateContext(ctx context.Context, userID string, keywords []string, limit int) string {
	if limit <= 0 {
		limit = DefaultContextLimit
	}

	results := r.Search(ctx, userID, Query{Keywords: keywords, Limit: limit})
	if len(results) == 0 {
		return ""
	}

	now := r.clock()
	var b strings.Builder
	b.WriteString("Relevant memories about this user:\n")
	for i, sm := range results {
		fmt.Fprintf(&b, "%d. [%s] %s", i+1, sm.Item.Kind, sm.Item.Content)
		if len(sm.Item.Topics) > 0 {
			fmt.Fprintf(&b, " (topics: %s)", strings.Join(sm.Item.Topics, ", "))
		}
		fmt.Fprintf(&b, " — %s\n", relativeAge(now, sm.Item.Timestamp))
	}
	return strings.TrimRight(b.String(), "\n")
}

// matches applies the query's time-range, kind, and importance filters.
func (q Query) matches(item Item) bool {
	if q.TimeRange != nil {
		if item.Timestamp.Before(q.TimeRange.From) || item.Timestamp.After(q.TimeRange.To) {
			return false
		}
	}
	if len(q.Kinds) > 0 {
		found := false
		for _, k := range q.Kinds {
			if item.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return item.Importance >= q.MinImportance
}

// relevanceScore awards each keyword its best-matching tier: 3 points for a
// substring of the content, else 2 for an exact topic match, else 1 for an
// exact entity match. The sum is normalized by the maximum attainable
// (3 per keyword), keeping the score in [0,1] even when a keyword appears in
// several fields of the same item. With no keywords every item scores 1.0,
// since there is nothing to discriminate on.
func relevanceScore(item Item, keywords []string) float64 {
	if len(keywords) == 0 {
		return 1.0
	}

	contentLower := strings.ToLower(item.Content)

	points := 0
	for _, kw := range keywords {
		kwLower := strings.ToLower(kw)
		switch {
		case strings.Contains(contentLower, kwLower):
			points += 3
		case containsFold(item.Topics, kwLower):
			points += 2
		case containsFold(item.Entities, kwLower):
			points += 1
		}
	}

	return float64(points) / float64(3*len(keywords))
}

// recencyScore is exp(-days/horizon): 1.0 for an item from right now,
// ≈ 0.37 at one horizon. Items timestamped in the future clamp to 1.0.
func (r *Retriever) recencyScore(now, ts time.Time) float64 {
	horizon := r.HorizonDays
	if horizon <= 0 {
		horizon = DefaultRecencyHorizonDays
	}

	days := now.Sub(ts).Hours() / 24
	if days < 0 {
		days = 0
	}
	return math.Exp(-days / horizon)
}

func (r *Retriever) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// containsFold reports whether any entry equals s case-insensitively.
// s must already be lowercased.
func containsFold(entries []string, s string) bool {
	for _, e := range entries {
		if strings.ToLower(e) == s {
			return true
		}
	}
	return false
}

// relativeAge renders a coarse "N days ago" / "N hours ago" phrase.
func relativeAge(now, ts time.Time) string {
	d := now.Sub(ts)
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d >= 24*time.Hour:
		return "1 day ago"
	case d >= 2*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d >= time.Hour:
		return "1 hour ago"
	default:
		return "just now"
	}
}
