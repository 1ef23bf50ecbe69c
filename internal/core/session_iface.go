package core

import "context"

// DisplayNameKey is the context key under which the HTTP layer stores the
// display name of the client opening a channel.
const DisplayNameKey = "display_name"

// IdentitySupplier resolves the already validated display name of a client
// opening a channel. Authentication happens before this point.
type IdentitySupplier interface {
	DisplayName(ctx context.Context) string
}

// ContextIdentity reads the display name stored under DisplayNameKey.
type ContextIdentity struct{}

func (ContextIdentity) DisplayName(ctx context.Context) string {
	name, _ := ctx.Value(DisplayNameKey).(string)
	return name
}
