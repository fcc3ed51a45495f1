// Package notify carries short, transient messages to the reader.
//
// A Notification is fire-and-forget: the code that raises it does not learn
// whether anyone saw it. In the web UI notifications are queued in the
// reader's session by Flash and shown on the next rendered page.
package notify

import (
	"context"
	"encoding/gob"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// Destructive reports whether the notification signals a failure.
func (n Notification) Destructive() bool {
	return n.Variant == VariantDestructive
}

// Notifier delivers notifications. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

func init() {
	gob.Register([]Notification{})
}

type quietKey struct{}

// Quiet marks ctx as belonging to a caller that presents results itself,
// such as a JSON API handler. Flash drops notifications raised under it.
func Quiet(ctx context.Context) context.Context {
	return context.WithValue(ctx, quietKey{}, true)
}

// IsQuiet reports whether ctx was marked with Quiet.
func IsQuiet(ctx context.Context) bool {
	quiet, _ := ctx.Value(quietKey{}).(bool)
	return quiet
}
