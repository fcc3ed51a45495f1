package notify

import (
	"context"
	"log"
)

const flashKey = "flash"

// SessionStore is the subset of a session manager Flash needs.
type SessionStore interface {
	Loaded(ctx context.Context) bool
	Get(ctx context.Context, key string) any
	Put(ctx context.Context, key string, val any)
	Pop(ctx context.Context, key string) any
}

// Flash queues notifications in the reader's session until the next page
// render pops them.
type Flash struct {
	store SessionStore
}

func NewFlash(store SessionStore) *Flash {
	return &Flash{store: store}
}

func (f *Flash) Notify(ctx context.Context, n Notification) {
	if IsQuiet(ctx) {
		return
	}
	if !f.store.Loaded(ctx) {
		log.Printf("[NOTIFY] No session for notification %q, dropping it", n.Title)
		return
	}
	if n.Variant == "" {
		n.Variant = VariantDefault
	}
	pending, _ := f.store.Get(ctx, flashKey).([]Notification)
	f.store.Put(ctx, flashKey, append(pending, n))
}

// Pop returns the pending notifications in the order they were raised and
// clears the queue.
func (f *Flash) Pop(ctx context.Context) []Notification {
	if !f.store.Loaded(ctx) {
		return nil
	}
	pending, _ := f.store.Pop(ctx, flashKey).([]Notification)
	return pending
}
