package session

import (
	"context"
	"testing"

	"fitroom-server/internal/domain"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi there"},
	}
	if err := store.Put(ctx, "abc", turns); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatalf("session not found after put")
	}
	if len(got) != 2 || got[0].Content != "hello" || got[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected history: %+v", got)
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "abc", []domain.Turn{{Role: domain.RoleUser, Content: "original"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, _, _ := store.Get(ctx, "abc")
	got[0].Content = "mutated"

	fresh, _, _ := store.Get(ctx, "abc")
	if fresh[0].Content != "original" {
		t.Fatalf("stored history mutated through returned slice")
	}
}

func TestMemoryStoreGetUnknown(t *testing.T) {
	store := NewMemoryStore()
	turns, ok, err := store.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok || turns != nil {
		t.Fatalf("expected absence, got %v %v", turns, ok)
	}
}

func TestMemoryStoreDeleteUnknownIsNoop(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Put(ctx, "keep", []domain.Turn{{Role: domain.RoleUser, Content: "x"}}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "ghost"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "keep"); !ok {
		t.Fatalf("unrelated session lost")
	}
}
