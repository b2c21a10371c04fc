package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// failOnExtractor fails deterministically for one turn index and otherwise
// emits a single fact item naming the conversation.
type failOnExtractor struct {
	failIndex int
	calls     int
}

func (f *failOnExtractor) Extract(_ context.Context, turn Turn, conversationID string) ([]Item, error) {
	idx := f.calls
	f.calls++
	if idx == f.failIndex {
		return nil, errors.New("deterministic failure")
	}
	return []Item{{
		ID:             NewItemID(turn.Timestamp),
		ConversationID: conversationID,
		Timestamp:      turn.Timestamp,
		Kind:           KindFact,
		Content:        fmt.Sprintf("fact from %s", conversationID),
		Sentiment:      SentimentNeutral,
		Importance:     KindFact.Importance(),
	}}, nil
}

func batchTurns(n int) []Turn {
	turns := make([]Turn, n)
	base := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)
	for i := range turns {
		turns[i] = Turn{
			UserText:      fmt.Sprintf("message %d", i),
			AssistantText: "noted",
			Timestamp:     base.Add(time.Duration(i) * time.Minute),
		}
	}
	return turns
}

func TestExtractBatchIsolatesFailures(t *testing.T) {
	extractor := &failOnExtractor{failIndex: 1}
	c := NewBatchCoordinator(extractor, nil)
	c.Pacing = time.Millisecond

	items := c.ExtractBatch(context.Background(), batchTurns(3), 100)

	if len(items) != 2 {
		t.Fatalf("expected items from the 2 surviving turns, got %d", len(items))
	}
	if items[0].ConversationID != "100" || items[1].ConversationID != "102" {
		t.Errorf("conversation ids = %s, %s; want 100, 102",
			items[0].ConversationID, items[1].ConversationID)
	}
	if extractor.calls != 3 {
		t.Errorf("all 3 turns should be attempted, got %d calls", extractor.calls)
	}
}

func TestExtractBatchAssignsDerivedConversationIDs(t *testing.T) {
	c := NewBatchCoordinator(&failOnExtractor{failIndex: -1}, nil)
	c.Pacing = 0

	items := c.ExtractBatch(context.Background(), batchTurns(4), 42)
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("%d", 42+i)
		if item.ConversationID != want {
			t.Errorf("items[%d].ConversationID = %s, want %s", i, item.ConversationID, want)
		}
	}
}

func TestExtractBatchCancellationKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	extractor := &failOnExtractor{failIndex: -1}
	c := NewBatchCoordinator(extractor, nil)
	// Pacing long enough that cancellation lands during the inter-turn wait.
	c.Pacing = time.Hour

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	items := c.ExtractBatch(ctx, batchTurns(5), 0)
	if len(items) != 1 {
		t.Fatalf("expected the first turn's item to survive cancellation, got %d", len(items))
	}
}

func TestExtractBatchSkipsPacingForRuleOnlyExtractor(t *testing.T) {
	// A provider-less TurnExtractor reports it is not generative, so even a
	// long configured pacing must not slow the batch down.
	c := NewBatchCoordinator(NewTurnExtractor(nil, nil), nil)
	c.Pacing = time.Hour

	done := make(chan []Item, 1)
	go func() {
		done <- c.ExtractBatch(context.Background(), batchTurns(3), 0)
	}()

	select {
	case items := <-done:
		if len(items) != 0 {
			t.Errorf("plain statements should extract nothing, got %d items", len(items))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("rule-only batch was paced")
	}
}

func TestExtractBatchEmptyInput(t *testing.T) {
	c := NewBatchCoordinator(&failOnExtractor{failIndex: -1}, nil)
	if items := c.ExtractBatch(context.Background(), nil, 0); len(items) != 0 {
		t.Errorf("expected no items for an empty batch, got %d", len(items))
	}
}
