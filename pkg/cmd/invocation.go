// Package cmd provides a transport-agnostic command core: a command has a name,
// a description and Run(ctx, invocation). Registration and dispatch belong to
// adapters such as the Discord slash command layer.
package cmd

import "context"

// Invocation carries the adapter payload for one command run. The Discord
// adapter stores its interaction there.
type Invocation struct {
	Data any
}

type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}
