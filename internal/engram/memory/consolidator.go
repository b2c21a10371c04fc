package memory

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// questionWords are the interrogative forms detected across question items.
var questionWords = []string{"why", "how", "what", "when", "where", "who"}

// Consolidate folds the full item corpus into the user's profile. It is a
// pure function of the corpus: running it twice on the same items yields an
// identical profile, modulo LastUpdated. The profile is rebuilt from
// scratch, never merged with a previous one.
func Consolidate(userID string, items []Item) Profile {
	return consolidateAt(userID, items, time.Now())
}

// consolidateAt is the time-injectable core of Consolidate (for testing).
func consolidateAt(userID string, items []Item, now time.Time) Profile {
	p := Profile{
		UserID:      userID,
		LastUpdated: now,
	}

	topicCounts := make(map[string]int)
	conversations := make(map[string]struct{})
	sentimentCounts := make(map[Sentiment]int)
	questionTypes := make(map[string]struct{})

	factIdx, prefIdx := 0, 0

	for _, item := range items {
		for _, topic := range item.Topics {
			topicCounts[topic]++
		}
		conversations[item.ConversationID] = struct{}{}

		switch item.Kind {
		case KindFact:
			// Only facts phrased about the user graduate to core facts,
			// with the subject word stripped.
			if stripped, ok := stripFold(item.Content, "user"); ok {
				p.CoreFacts = setOpaque(p.CoreFacts, "fact", factIdx, stripped)
				factIdx++
			}

		case KindPreference:
			p.Preferences = setOpaque(p.Preferences, "preference", prefIdx, item.Content)
			prefIdx++

		case KindRelationship:
			// Keyed by the first mentioned entity; later items for the same
			// entity overwrite earlier ones.
			if len(item.Entities) > 0 {
				if p.Relationships == nil {
					p.Relationships = make(map[string]string)
				}
				p.Relationships[item.Entities[0]] = item.Content
			}

		case KindGoal:
			p.Goals = append(p.Goals, item.Content)

		case KindSkill:
			p.Skills = append(p.Skills, item.Content)

		case KindEmotion:
			sentimentCounts[item.Sentiment]++
			for _, topic := range item.Topics {
				if p.EmotionalProfile.Triggers == nil {
					p.EmotionalProfile.Triggers = make(map[string]Sentiment)
				}
				p.EmotionalProfile.Triggers[topic] = item.Sentiment
			}

		case KindQuestion:
			lower := strings.ToLower(item.Content)
			for _, w := range questionWords {
				if strings.Contains(lower, w) {
					questionTypes[w] = struct{}{}
				}
			}
		}
	}

	p.Interests = rankedTopics(topicCounts, 2)
	p.EmotionalProfile.DominantEmotions = rankedSentiments(sentimentCounts)

	if len(topicCounts) > 0 {
		p.ConversationPatterns.CommonTopics = topicCounts
	}
	if len(conversations) > 0 {
		p.ConversationPatterns.AverageConversationLength =
			float64(len(items)) / float64(len(conversations))
	}
	p.ConversationPatterns.QuestionTypes = sortedSet(questionTypes)

	return p
}

// setOpaque stores value under a fresh opaque id. Ids are name-based UUIDs
// derived from the section, position, and content, so re-consolidating the
// same corpus reproduces them exactly.
func setOpaque(m map[string]string, section string, idx int, value string) map[string]string {
	if m == nil {
		m = make(map[string]string)
	}
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s|%d|%s", section, idx, value)))
	m[id.String()] = value
	return m
}

// stripFold removes every case-insensitive occurrence of sub from s and
// collapses the surrounding whitespace. The second return is false when s
// does not contain sub.
func stripFold(s, sub string) (string, bool) {
	lower := strings.ToLower(s)
	sub = strings.ToLower(sub)
	if !strings.Contains(lower, sub) {
		return "", false
	}

	var b strings.Builder
	for {
		i := strings.Index(lower, sub)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(sub):]
	}

	return strings.TrimSpace(strings.Join(strings.Fields(b.String()), " ")), true
}

// rankedTopics returns topics with count ≥ minCount, ordered by descending
// count, ties broken lexicographically for reproducibility.
func rankedTopics(counts map[string]int, minCount int) []string {
	var topics []string
	for topic, n := range counts {
		if n >= minCount {
			topics = append(topics, topic)
		}
	}
	sort.Slice(topics, func(i, j int) bool {
		if counts[topics[i]] != counts[topics[j]] {
			return counts[topics[i]] > counts[topics[j]]
		}
		return topics[i] < topics[j]
	})
	return topics
}

// rankedSentiments orders observed sentiments by descending frequency,
// ties broken lexicographically.
func rankedSentiments(counts map[Sentiment]int) []Sentiment {
	var sentiments []Sentiment
	for s := range counts {
		sentiments = append(sentiments, s)
	}
	sort.Slice(sentiments, func(i, j int) bool {
		if counts[sentiments[i]] != counts[sentiments[j]] {
			return counts[sentiments[i]] > counts[sentiments[j]]
		}
		return sentiments[i] < sentiments[j]
	})
	return sentiments
}

func sortedSet(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
