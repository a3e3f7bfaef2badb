package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal/core/events"
	"github.com/frahmantamala/procurement-inventory/internal/mailer"
	"github.com/spf13/cobra"
)

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event management commands",
	Long:  `Manage events: publish account events through the mail notifier`,
}

var publishEventCmd = &cobra.Command{
	Use:       "publish [event-type]",
	Short:     "Publish a test account event",
	Long:      `Publish a test account event through the event bus and the configured mail sender`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{events.EventTypeUserInvited, events.EventTypePasswordResetRequested},
	RunE: func(cmd *cobra.Command, args []string) error {
		return publishTestEvent(args[0])
	},
}

var (
	eventTo   string
	eventLink string
)

func publishTestEvent(eventType string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	lg := initLogger(cfg)

	bus := events.NewEventBus(lg)
	mailer.NewNotifier(mailer.NewSender(cfg.Mail, lg), lg).Subscribe(bus)

	expires := time.Now().Add(cfg.Security.ResetTokenDuration)

	var event events.Event
	switch eventType {
	case events.EventTypeUserInvited:
		event = events.NewUserInvitedEvent(0, eventTo, "Test User", eventLink, expires)
	case events.EventTypePasswordResetRequested:
		event = events.NewPasswordResetRequestedEvent(0, eventTo, "Test User", eventLink, expires)
	default:
		return fmt.Errorf("unsupported event type %q", eventType)
	}

	lg.Info("publishing test event", "event_type", eventType, "event_id", event.EventID(), "to", eventTo)

	if err := bus.PublishSync(context.Background(), event); err != nil {
		return fmt.Errorf("publish: %w", err)
	}

	lg.Info("test event published successfully")
	return nil
}

func init() {
	publishEventCmd.Flags().StringVar(&eventTo, "to", "admin@procurement.local", "recipient address")
	publishEventCmd.Flags().StringVar(&eventLink, "link", "http://localhost:3000/reset-password/test", "link carried by the event")

	eventCmd.AddCommand(publishEventCmd)
}
