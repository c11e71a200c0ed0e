package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/keshon/tts-bot/pkg/ratelimit"
)

// newCommandPacer returns the limiter shared by every guild's command
// registration. GuildCreate fires once per guild right after connecting, so
// a bot in many guilds registers in a burst.
func newCommandPacer() *ratelimit.AdaptiveLimiter {
	return ratelimit.NewAdaptiveLimiter(2, 0.2, 5, 0.5, 0.5)
}

// paced runs call once the pacer allows it and feeds Discord's answer back.
// A 429 or 5xx slows every registration that follows.
func paced(ctx context.Context, pacer *ratelimit.AdaptiveLimiter, call func() error) error {
	if err := pacer.Wait(ctx); err != nil {
		return fmt.Errorf("command pacer: %w", err)
	}
	err := restStatus(call())
	pacer.Observe(err)
	return err
}

// restStatus attaches the HTTP status of a discordgo REST failure so the
// ratelimit classifiers can see it.
func restStatus(err error) error {
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return err
	}
	return fmt.Errorf("%w: %w", &ratelimit.StatusError{Code: rest.Response.StatusCode}, err)
}
