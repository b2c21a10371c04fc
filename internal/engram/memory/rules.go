package memory

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fixed phrase lexicons for the rule-based fallback strategy. Matching is
// performed against the lowercased user text; the first matching phrase per
// category wins, so a turn yields at most one item per category.
var (
	preferenceMarkers = []string{"i like", "i love", "i prefer"}

	goalMarkers = []string{"i want to", "i need to", "i hope to"}

	relationshipMarkers = []string{"my mom", "my dad", "my sister", "my brother", "my friend"}

	emotionKeywords = []string{
		"happy", "sad", "excited", "angry", "scared",
		"worried", "love", "hate", "frustrated", "proud",
		"lonely", "nervous",
	}
)

// Sentiment lexicons used to score emotion text in both strategies.
var (
	positiveWords = []string{
		"happy", "excited", "love", "great", "awesome",
		"proud", "glad", "fun", "amazing", "wonderful",
	}
	negativeWords = []string{
		"sad", "angry", "scared", "hate", "worried",
		"frustrated", "terrible", "awful", "lonely", "nervous",
	}
)

// ruleExtract is the local fallback extraction strategy. It tests the
// lowercased user text against the phrase lexicons and emits at most one
// item per category. Entities are shared context attached to every emitted
// item, as in the generative path.
func ruleExtract(turn Turn, conversationID string) []Item {
	lower := strings.ToLower(turn.UserText)
	entities := heuristicEntities(turn.UserText)

	var items []Item
	add := func(kind Kind, sentiment Sentiment) {
		items = append(items, Item{
			ID:             NewItemID(turn.Timestamp),
			ConversationID: conversationID,
			Timestamp:      turn.Timestamp,
			Kind:           kind,
			Content:        turn.UserText,
			Entities:       entities,
			Sentiment:      sentiment,
			Importance:     kind.Importance(),
		})
	}

	if matchesAny(lower, preferenceMarkers) {
		add(KindPreference, SentimentNeutral)
	}
	if matchesAny(lower, emotionKeywords) {
		add(KindEmotion, scoreSentiment(turn.UserText))
	}
	if matchesAny(lower, goalMarkers) {
		add(KindGoal, SentimentNeutral)
	}
	if matchesAny(lower, relationshipMarkers) {
		add(KindRelationship, SentimentNeutral)
	}

	return items
}

// matchesAny reports whether any phrase in the lexicon occurs in the
// (already lowercased) text. Single words match as substrings; multi-word
// phrases match as an ordered word sequence tolerating up to two intervening
// words, so "I really like dinosaurs" still carries the "i like" marker.
func matchesAny(lower string, lexicon []string) bool {
	for _, phrase := range lexicon {
		if !strings.Contains(phrase, " ") {
			if strings.Contains(lower, phrase) {
				return true
			}
			continue
		}
		if matchesPhrase(lower, phrase) {
			return true
		}
	}
	return false
}

// matchesPhrase reports whether the words of phrase appear in text in order,
// with at most two other words between consecutive phrase words. Tokens are
// compared with surrounding punctuation stripped.
func matchesPhrase(lower, phrase string) bool {
	target := strings.Fields(phrase)
	words := strings.Fields(lower)

	for start := range words {
		if cleanToken(words[start]) != target[0] {
			continue
		}
		pos := start
		matched := true
		for _, want := range target[1:] {
			next := -1
			for j := pos + 1; j <= pos+3 && j < len(words); j++ {
				if cleanToken(words[j]) == want {
					next = j
					break
				}
			}
			if next < 0 {
				matched = false
				break
			}
			pos = next
		}
		if matched {
			return true
		}
	}
	return false
}

func cleanToken(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// scoreSentiment counts positive and negative lexicon hits in the text.
// Both polarities present yields Mixed; no hits yields Neutral.
func scoreSentiment(text string) Sentiment {
	lower := strings.ToLower(text)

	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	switch {
	case pos > 0 && neg > 0:
		return SentimentMixed
	case pos > 0:
		return SentimentPositive
	case neg > 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// heuristicEntities treats every whitespace-delimited token of length ≥ 2
// whose first character is uppercase as a named entity. Duplicates are
// removed while preserving first-seen order.
func heuristicEntities(text string) []string {
	var entities []string
	seen := make(map[string]struct{})

	for _, token := range strings.Fields(text) {
		if utf8.RuneCountInString(token) < 2 {
			continue
		}
		first, _ := utf8.DecodeRuneInString(token)
		if !unicode.IsUpper(first) {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		entities = append(entities, token)
	}

	return entities
}
