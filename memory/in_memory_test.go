package memory

import (
	"strings"
	"testing"

	"github.com/chatrelay/chatrelay/core"
)

func TestInMemoryStore_AppendWithinBudget(t *testing.T) {
	store := NewInMemoryStore()
	for i := 0; i < 3; i++ {
		if err := store.Append("ch-1", core.NewUserRecord("ch-1", "alice", "short message")); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	memCtx, err := store.Context("ch-1")
	if err != nil {
		t.Fatalf("context: %v", err)
	}
	if len(memCtx.Recent) != 3 {
		t.Fatalf("expected all 3 records in window, got %d", len(memCtx.Recent))
	}
	if memCtx.Summary != "" {
		t.Fatalf("nothing should be summarized under budget, got %q", memCtx.Summary)
	}
}

func TestInMemoryStore_EvictionFoldsIntoSummary(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.MaxTokens = 20 })

	long := strings.Repeat("word ", 20) // ~25 tokens on its own
	if err := store.Append("ch-1", core.NewUserRecord("ch-1", "alice", long)); err != nil {
		t.Fatal(err)
	}
	if err := store.Append("ch-1", core.NewAssistantRecord("ch-1", "relay", "reply")); err != nil {
		t.Fatal(err)
	}

	memCtx, _ := store.Context("ch-1")
	if len(memCtx.Recent) != 1 {
		t.Fatalf("oldest record should be evicted, window has %d", len(memCtx.Recent))
	}
	if memCtx.Recent[0].Content != "reply" {
		t.Fatalf("newest record must survive, got %q", memCtx.Recent[0].Content)
	}
	if !strings.Contains(memCtx.Summary, "alice: ") {
		t.Fatalf("evicted record should appear in summary, got %q", memCtx.Summary)
	}
}

func TestInMemoryStore_NewestRecordNeverEvicted(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) { o.MaxTokens = 1 })
	if err := store.Append("ch-1", core.NewUserRecord("ch-1", "alice", strings.Repeat("x", 100))); err != nil {
		t.Fatal(err)
	}
	memCtx, _ := store.Context("ch-1")
	if len(memCtx.Recent) != 1 {
		t.Fatalf("a lone over-budget record must stay in the window, got %d", len(memCtx.Recent))
	}
}

func TestInMemoryStore_SummaryBounded(t *testing.T) {
	store := NewInMemoryStore(func(o *Options) {
		o.MaxTokens = 10
		o.MaxSummaryLength = 50
	})
	for i := 0; i < 20; i++ {
		if err := store.Append("ch-1", core.NewUserRecord("ch-1", "alice", strings.Repeat("y", 60))); err != nil {
			t.Fatal(err)
		}
	}
	memCtx, _ := store.Context("ch-1")
	if len(memCtx.Summary) > 50 {
		t.Fatalf("summary must be trimmed to MaxSummaryLength, got %d chars", len(memCtx.Summary))
	}
}

func TestInMemoryStore_ChannelIsolation(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.Append("ch-1", core.NewUserRecord("ch-1", "alice", "hello")); err != nil {
		t.Fatal(err)
	}
	memCtx, _ := store.Context("ch-2")
	if len(memCtx.Recent) != 0 || memCtx.Summary != "" {
		t.Fatal("channels must not share memory")
	}
}
