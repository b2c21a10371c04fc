package memory

import (
	"testing"
	"time"
)

func ruleTurn(userText string) Turn {
	return Turn{
		UserText:      userText,
		AssistantText: "I see!",
		Timestamp:     time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC),
	}
}

func TestRuleExtractOnePerCategory(t *testing.T) {
	// Preference, emotion, goal, and relationship markers all present:
	// the fallback emits one item per category, never two of the same.
	turn := ruleTurn("I love my friend Maya, I'm so happy, and I want to visit her, I also love hiking")

	items := ruleExtract(turn, "5")
	if len(items) != 4 {
		t.Fatalf("expected 4 items (one per category), got %d", len(items))
	}

	wantKinds := []Kind{KindPreference, KindEmotion, KindGoal, KindRelationship}
	for i, want := range wantKinds {
		if items[i].Kind != want {
			t.Errorf("items[%d].Kind = %s, want %s", i, items[i].Kind, want)
		}
		if items[i].Content != turn.UserText {
			t.Errorf("items[%d].Content = %q, want the user text", i, items[i].Content)
		}
	}
}

func TestRuleExtractMarkerTolerantOfIntensifiers(t *testing.T) {
	items := ruleExtract(ruleTurn("I really like dinosaurs and space"), "7")
	if len(items) != 1 {
		t.Fatalf("expected exactly one preference item, got %d", len(items))
	}
	if items[0].Kind != KindPreference {
		t.Errorf("kind = %s, want %s", items[0].Kind, KindPreference)
	}
}

func TestMatchesPhrase(t *testing.T) {
	cases := []struct {
		text   string
		phrase string
		want   bool
	}{
		{"i like dogs", "i like", true},
		{"i really like dogs", "i like", true},
		{"i do not really like dogs", "i like", false}, // gap too wide
		{"like i said", "i like", false},               // order matters
		{"i want, eventually, to travel", "i want to", true},
	}
	for _, tc := range cases {
		if got := matchesPhrase(tc.text, tc.phrase); got != tc.want {
			t.Errorf("matchesPhrase(%q, %q) = %v, want %v", tc.text, tc.phrase, got, tc.want)
		}
	}
}

func TestRuleExtractNoMatches(t *testing.T) {
	items := ruleExtract(ruleTurn("the weather looks fine today"), "1")
	if len(items) != 0 {
		t.Errorf("expected no items, got %d", len(items))
	}
}

func TestRuleExtractSharesEntities(t *testing.T) {
	turn := ruleTurn("I like visiting Paris with my sister Ana")

	items := ruleExtract(turn, "1")
	if len(items) != 2 {
		t.Fatalf("expected preference + relationship, got %d items", len(items))
	}
	for _, item := range items {
		if len(item.Entities) != 2 || item.Entities[0] != "Paris" || item.Entities[1] != "Ana" {
			t.Errorf("%s entities = %v, want [Paris Ana]", item.Kind, item.Entities)
		}
	}
}

func TestHeuristicEntities(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []string
	}{
		{"capitalized tokens", "I saw Rexy at the Natural History museum", []string{"Rexy", "Natural", "History"}},
		{"single letter skipped", "I am A fan", nil},
		{"duplicates removed", "Maya and Maya again", []string{"Maya"}},
		{"nothing capitalized", "all lowercase words here", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := heuristicEntities(tc.text)
			if len(got) != len(tc.want) {
				t.Fatalf("entities = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Errorf("entities[%d] = %q, want %q", i, got[i], tc.want[i])
				}
			}
		})
	}
}

func TestScoreSentiment(t *testing.T) {
	cases := []struct {
		name string
		text string
		want Sentiment
	}{
		{"positive only", "so happy and excited today", SentimentPositive},
		{"negative only", "really sad and worried", SentimentNegative},
		{"both polarities", "happy about the trip but scared of flying", SentimentMixed},
		{"no hits", "just a plain statement", SentimentNeutral},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := scoreSentiment(tc.text); got != tc.want {
				t.Errorf("scoreSentiment(%q) = %s, want %s", tc.text, got, tc.want)
			}
		})
	}
}
