package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keshon/tts-bot/pkg/ratelimit"
)

func restError(code int) error {
	return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
}

func TestRestStatus(t *testing.T) {
	err := restStatus(restError(http.StatusTooManyRequests))
	assert.True(t, ratelimit.IsRateLimited(err))

	var rest *discordgo.RESTError
	assert.ErrorAs(t, err, &rest, "the discordgo error stays reachable")

	assert.True(t, ratelimit.IsServerError(restStatus(restError(http.StatusBadGateway))))
	assert.False(t, ratelimit.IsRateLimited(restStatus(restError(http.StatusForbidden))))

	plain := errors.New("dial tcp: refused")
	assert.Same(t, plain, restStatus(plain))
	assert.NoError(t, restStatus(nil))
}

func TestPacedSlowsDownAfterTooManyRequests(t *testing.T) {
	pacer := ratelimit.NewAdaptiveLimiter(20, 2, 20, 1, 0.1)
	ctx := context.Background()
	ok := func() error { return nil }

	start := time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, paced(ctx, pacer, ok))
	}
	assert.Less(t, time.Since(start), 200*time.Millisecond, "a fresh pacer lets a burst through")

	err := paced(ctx, pacer, func() error { return restError(http.StatusTooManyRequests) })
	require.Error(t, err)
	assert.InDelta(t, 2, pacer.CurrentLimit(), 0.001)

	start = time.Now()
	for i := 0; i < 4; i++ {
		require.NoError(t, paced(ctx, pacer, ok))
	}
	assert.GreaterOrEqual(t, time.Since(start), 800*time.Millisecond, "after a 429 the same burst is spread out")
	assert.InDelta(t, 2, pacer.CurrentLimit(), 0.001, "successes right after a 429 do not raise the rate")
}

func TestPacedHonoursContext(t *testing.T) {
	pacer := ratelimit.NewAdaptiveLimiter(0.2, 0.2, 0.2, 0, 0.5)
	require.NoError(t, paced(context.Background(), pacer, func() error { return nil }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	called := false
	err := paced(ctx, pacer, func() error { called = true; return nil })
	assert.Error(t, err)
	assert.False(t, called)
}
