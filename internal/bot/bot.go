package bot

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/roybase/remindmebot/internal/genai"
	"github.com/roybase/remindmebot/internal/messaging"
	"github.com/roybase/remindmebot/internal/recovery"
	"github.com/roybase/remindmebot/internal/scheduler"
	"github.com/roybase/remindmebot/internal/store"
)

// Run assembles the bot from the configured modules and processes transport
// events until the process is signalled to stop. Events are handled one at a
// time; timer fires are the only out-of-band concurrency.
func Run(tgOpts []messaging.TelegramOption, storeOpts []store.Option, genaiOpts []genai.Option) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.NewStore(storeOpts...)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	defer st.Close()

	genaiClient, err := genai.NewClient(genaiOpts...)
	if err != nil {
		return fmt.Errorf("failed to create GenAI client: %w", err)
	}

	msg, err := messaging.NewTelegramService(tgOpts...)
	if err != nil {
		return fmt.Errorf("failed to create Telegram service: %w", err)
	}

	sched := scheduler.New()
	defer sched.Stop()

	dispatcher := NewDispatcher(st, sched, msg)
	pending := newPendingStore()
	convs := newConversationStore()
	orchestrator := NewOrchestrator(genaiClient, msg, dispatcher, convs, pending)
	router := NewCallbackRouter(dispatcher, msg, pending)

	if err := recovery.Recover(ctx, st, dispatcher); err != nil {
		return fmt.Errorf("startup recovery failed: %w", err)
	}

	if err := msg.Start(ctx); err != nil {
		return fmt.Errorf("failed to start Telegram service: %w", err)
	}
	defer msg.Stop()

	slog.Info("RemindMeBot running")
	for {
		select {
		case <-ctx.Done():
			slog.Info("RemindMeBot shutting down", "reason", ctx.Err())
			return nil
		case ev, ok := <-msg.Events():
			if !ok {
				slog.Info("RemindMeBot event channel closed")
				return nil
			}
			handleEvent(ctx, orchestrator, router, ev)
		}
	}
}

// handleEvent routes one transport event to the orchestrator or the callback
// router.
func handleEvent(ctx context.Context, orchestrator *Orchestrator, router *CallbackRouter, ev messaging.Event) {
	switch {
	case ev.Text != nil:
		if strings.HasPrefix(ev.Text.Text, "/start") {
			orchestrator.HandleStart(ctx, *ev.Text)
			return
		}
		orchestrator.HandleText(ctx, *ev.Text)
	case ev.Callback != nil:
		router.Handle(ctx, *ev.Callback)
	}
}
