package discord

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"

	"github.com/keshon/tts-bot/internal/botlist"
	"github.com/keshon/tts-bot/internal/config"
	"github.com/keshon/tts-bot/internal/storage"
	"github.com/keshon/tts-bot/internal/voice"
	"github.com/keshon/tts-bot/pkg/cmd"
	"github.com/keshon/tts-bot/pkg/looper"
	"github.com/keshon/tts-bot/pkg/ratelimit"
)

// Bot is a Discord bot
type Bot struct {
	dg       *discordgo.Session
	cfg      *config.Config
	store    *storage.Storage
	voice    *voice.Coordinator
	commands *cmd.Registry
	loops    *looper.Manager
	ctx      context.Context

	commandPacer *ratelimit.AdaptiveLimiter
}

func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{
		cfg:      cfg,
		store:    store,
		commands: cmd.NewRegistry(),
		loops:    looper.NewManager(reportLoopStatus),

		commandPacer: newCommandPacer(),
	}
}

// Run connects to the gateway and serves until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildVoiceStates

	b.dg = dg
	b.ctx = ctx
	b.voice = voice.NewCoordinator(&voiceSessions{dg: dg})

	if err := b.registerHandlers(); err != nil {
		return err
	}

	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onGuildCreate)
	dg.AddHandler(b.onInteractionCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	updater := newUpdater(dg, b.cfg)
	if len(updater.Targets()) == 0 {
		log.Println("[INFO] No bot list tokens configured, stats will not be posted")
	}
	// Loops outlive ctx so shutdown can stop them one by one.
	loopCtx, cancelLoops := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelLoops()
	if err := b.loops.Start(loopCtx, updater); err != nil {
		return err
	}
	log.Printf("[INFO] [Looper] %s", b.loops.Status())

	<-ctx.Done()
	log.Println("[INFO] ❎ Shutdown signal received. Cleaning up...")
	b.stopLoops()
	return nil
}

// stopLoops stops every running loop and waits for in-flight runs.
func (b *Bot) stopLoops() {
	for _, name := range b.loops.List() {
		if err := b.loops.Stop(name); err != nil {
			log.Printf("[WARN] [Looper] %v", err)
		}
	}
	b.loops.Wait()
	log.Printf("[INFO] [Looper] %s", b.loops.Status())
}

func (b *Bot) registerHandlers() error {
	state := stateView{dg: b.dg}
	mws := []cmd.Middleware{WithGuildOnly(), WithCommandLogger(b.store)}
	guarded := append(slices.Clone(mws), WithSetupChannel(b.store, state))

	if err := b.commands.Register(&JoinCommand{Voice: b.voice, State: state}, guarded...); err != nil {
		return err
	}
	if err := b.commands.Register(&LeaveCommand{Voice: b.voice}, guarded...); err != nil {
		return err
	}
	if err := b.commands.Register(&HistoryCommand{Store: b.store}, WithGuildOnly()); err != nil {
		return err
	}
	return b.commands.Register(&SetupCommand{Store: b.store}, mws...)
}

func reportLoopStatus(status string) {
	log.Printf("[DEBUG] [Looper] %s", status)
}

func newUpdater(dg *discordgo.Session, cfg *config.Config) *botlist.Updater {
	client := &http.Client{Timeout: cfg.BotListHTTPTimeout}
	return botlist.NewUpdater(gatewayStats{dg: dg}, client, botlist.Targets(cfg.BotListTokens()))
}

// onReady is called when the bot is ready
func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("[INFO] ✅ Discord bot %v is running in %d guilds.", r.User.Username, len(r.Guilds))
}

// onGuildCreate fires for every guild on startup and when the bot is added to one.
func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if b.isGuildBlacklisted(g.Guild.ID) {
		log.Printf("[INFO] Leaving blacklisted guild: %s (%s)", g.Guild.ID, g.Guild.Name)
		if err := s.GuildLeave(g.Guild.ID); err != nil {
			log.Printf("[ERR] Failed to leave guild %s: %v", g.Guild.ID, err)
		}
		return
	}

	if !b.cfg.InitSlashCommands {
		return
	}
	guildID, err := snowflake.Parse(g.Guild.ID)
	if err != nil {
		log.Printf("[ERR] Invalid guild id %q: %v", g.Guild.ID, err)
		return
	}
	if err := b.registerCommands(b.ctx, guildID); err != nil {
		log.Printf("[ERR] Failed to register commands for guild %s: %v", g.Guild.ID, err)
	}
}

// onInteractionCreate dispatches slash commands
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	name := i.ApplicationCommandData().Name
	c, ok := b.commands.Get(name)
	if !ok {
		log.Printf("[WARN] Unknown command: %s", name)
		return
	}

	it, err := newInteraction(s, i)
	if err != nil {
		log.Printf("[ERR] Bad interaction for /%s: %v", name, err)
		return
	}

	if err := c.Run(b.ctx, &cmd.Invocation{Data: it}); err != nil {
		log.Printf("[ERR] Error running slash command /%s: %v", name, err)
	}
}

func (b *Bot) isGuildBlacklisted(guildID string) bool {
	return slices.Contains(b.cfg.DiscordGuildBlacklist, guildID)
}
