package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echo struct {
	name string
	ran  *[]string
}

func (e echo) Name() string        { return e.name }
func (e echo) Description() string { return "echo " + e.name }
func (e echo) Run(_ context.Context, _ *Invocation) error {
	*e.ran = append(*e.ran, e.name)
	return nil
}

func tag(label string, trace *[]string) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			*trace = append(*trace, label)
			return c.Run(ctx, inv)
		})
	}
}

func TestApplyOrder(t *testing.T) {
	var trace []string
	c := Apply(echo{name: "join", ran: &trace}, tag("outer", &trace), tag("inner", &trace))

	require.NoError(t, c.Run(context.Background(), &Invocation{}))
	assert.Equal(t, []string{"outer", "inner", "join"}, trace)
	assert.Equal(t, "join", c.Name())
	assert.Equal(t, "echo join", c.Description())
	assert.IsType(t, echo{}, Root(c))
}

func TestRegistry(t *testing.T) {
	var trace []string
	r := NewRegistry()

	require.NoError(t, r.Register(echo{name: "setup", ran: &trace}))
	require.NoError(t, r.Register(echo{name: "join", ran: &trace}, tag("log", &trace)))
	assert.Error(t, r.Register(echo{name: "join", ran: &trace}))

	c, ok := r.Get("join")
	require.True(t, ok)
	require.NoError(t, c.Run(context.Background(), &Invocation{}))
	assert.Equal(t, []string{"log", "join"}, trace)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "join", all[0].Name())
	assert.Equal(t, "setup", all[1].Name())
}
