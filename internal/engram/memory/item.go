// Package memory implements the conversational long-term memory engine:
// extraction of typed memory items from raw conversation turns, append-only
// persistence, relevance+recency retrieval, and consolidation of the full
// item corpus into a compact per-user profile that is re-injected into
// future prompts.
package memory

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Kind classifies a memory item by what the extracted statement expresses.
type Kind string

const (
	KindFact         Kind = "fact"
	KindPreference   Kind = "preference"
	KindEmotion      Kind = "emotion"
	KindGoal         Kind = "goal"
	KindRelationship Kind = "relationship"
	KindSkill        Kind = "skill"
	KindQuestion     Kind = "question"
)

// Sentiment is the emotional polarity of an item. It is meaningful only for
// KindEmotion items; every other kind defaults to SentimentNeutral.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
	SentimentMixed    Sentiment = "mixed"
)

// importanceByKind holds the static weight assigned at extraction time.
// The weights order goals and relationships above preferences, preferences
// above plain facts, and questions lowest.
var importanceByKind = map[Kind]float64{
	KindFact:         0.7,
	KindPreference:   0.8,
	KindEmotion:      0.6,
	KindGoal:         0.9,
	KindRelationship: 0.9,
	KindSkill:        0.7,
	KindQuestion:     0.5,
}

// Importance returns the static extraction-time weight for the kind.
// Unknown kinds weigh 0.5.
func (k Kind) Importance() float64 {
	if w, ok := importanceByKind[k]; ok {
		return w
	}
	return 0.5
}

// Item is one atomic fact distilled from a conversation turn. Items are
// created only by extraction, are immutable afterwards, and are persisted
// append-only; the engine never updates or deletes them.
type Item struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"` // correlates the item to its source turn/session
	Timestamp      time.Time `json:"timestamp"`       // when the source turn occurred, not extraction time
	Kind           Kind      `json:"kind"`
	Content        string    `json:"content"`
	Topics         []string  `json:"topics,omitempty"`
	Entities       []string  `json:"entities,omitempty"`
	Sentiment      Sentiment `json:"sentiment"`
	Importance     float64   `json:"importance"` // static per-kind weight in [0,1]
}

// Turn is one raw user/assistant exchange supplied by the conversation
// source. Timestamp is the moment the exchange occurred.
type Turn struct {
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewItemID returns a fresh ULID seeded with the given timestamp, so item
// ids sort in source-turn order.
func NewItemID(ts time.Time) string {
	return ulid.MustNew(ulid.Timestamp(ts), rand.Reader).String()
}
