package memory

import (
	"sort"
	"strings"
	"time"
)

// Profile is the consolidated, long-lived summary of every memory item for
// one user. It is entirely rebuilt from the
// full item corpus on each consolidation and overwritten in the store as a
// single record, never merged incrementally.
type Profile struct {
	UserID        string            `json:"user_id"`
	CoreFacts     map[string]string `json:"core_facts,omitempty"`    // opaque id → fact text
	Preferences   map[string]string `json:"preferences,omitempty"`   // opaque id → preference text
	Relationships map[string]string `json:"relationships,omitempty"` // entity name → relationship text, last writer wins
	Goals         []string          `json:"goals,omitempty"`         // extraction order, duplicates allowed
	Skills        []string          `json:"skills,omitempty"`        // extraction order, duplicates allowed
	Interests     []string          `json:"interests,omitempty"`     // topics seen in ≥ 2 items, by descending count

	EmotionalProfile     EmotionalProfile     `json:"emotional_profile"`
	ConversationPatterns ConversationPatterns `json:"conversation_patterns"`

	LastUpdated time.Time `json:"last_updated"`
}

// EmotionalProfile captures the user's emotional tendencies.
type EmotionalProfile struct {
	// DominantEmotions lists sentiments of emotion items by descending
	// frequency.
	DominantEmotions []Sentiment `json:"dominant_emotions,omitempty"`
	// Triggers maps a topic to the sentiment last seen with it.
	Triggers map[string]Sentiment `json:"triggers,omitempty"`
}

// ConversationPatterns captures how the user converses.
type ConversationPatterns struct {
	// CommonTopics tallies topic occurrences across all items.
	CommonTopics map[string]int `json:"common_topics,omitempty"`
	// AverageConversationLength is items per distinct conversation id.
	AverageConversationLength float64 `json:"average_conversation_length"`
	// QuestionTypes is the set of interrogative forms detected across
	// question items (why/how/what/when/where/who), sorted.
	QuestionTypes []string `json:"question_types,omitempty"`
}

// SummaryText renders the profile as a prompt-ready block with enumerated
// sections for facts, preferences, relationships, goals, skills, and
// interests. Empty sections are omitted; an empty profile renders as the
// empty string. Map-backed sections are sorted by key so the rendering is
// stable across calls.
func (p *Profile) SummaryText() string {
	var b strings.Builder

	writeMapSection(&b, "Known facts about the user", p.CoreFacts)
	writeMapSection(&b, "Preferences", p.Preferences)

	if len(p.Relationships) > 0 {
		b.WriteString("Relationships:\n")
		for _, entity := range sortedKeys(p.Relationships) {
			b.WriteString("- " + entity + ": " + p.Relationships[entity] + "\n")
		}
	}

	writeListSection(&b, "Goals", p.Goals)
	writeListSection(&b, "Skills", p.Skills)

	if len(p.Interests) > 0 {
		b.WriteString("Interests: " + strings.Join(p.Interests, ", ") + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func writeMapSection(b *strings.Builder, heading string, m map[string]string) {
	if len(m) == 0 {
		return
	}
	b.WriteString(heading + ":\n")
	for _, k := range sortedKeys(m) {
		b.WriteString("- " + m[k] + "\n")
	}
}

func writeListSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading + ":\n")
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
