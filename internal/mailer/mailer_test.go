package mailer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/core/events"
	"github.com/frahmantamala/procurement-inventory/internal/mailer"
	"github.com/frahmantamala/procurement-inventory/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMailer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Mailer Suite")
}

type capturingSender struct {
	sent []mailer.Message
	err  error
}

func (c *capturingSender) Send(ctx context.Context, msg mailer.Message) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

var _ = Describe("Notifier", func() {
	var (
		sender *capturingSender
		bus    *events.EventBus
		ctx    context.Context
	)

	BeforeEach(func() {
		sender = &capturingSender{}
		bus = events.NewEventBus(logger.Discard())
		mailer.NewNotifier(sender, logger.Discard()).Subscribe(bus)
		ctx = context.Background()
	})

	It("mails the invite link", func() {
		e := events.NewUserInvitedEvent(4, "bob@corp.io", "Bob", "http://app/reset-password/abc", time.Now().Add(10*time.Minute))
		Expect(bus.PublishSync(ctx, e)).To(Succeed())

		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].To).To(Equal("bob@corp.io"))
		Expect(sender.sent[0].Subject).To(ContainSubstring("invited"))
		Expect(sender.sent[0].Text).To(ContainSubstring("http://app/reset-password/abc"))
		Expect(sender.sent[0].Text).To(ContainSubstring("10 minutes"))
	})

	It("mails the reset link", func() {
		e := events.NewPasswordResetRequestedEvent(4, "bob@corp.io", "Bob", "http://app/reset-password/xyz", time.Now().Add(2*time.Hour))
		Expect(bus.PublishSync(ctx, e)).To(Succeed())

		Expect(sender.sent).To(HaveLen(1))
		Expect(sender.sent[0].Subject).To(Equal("Password reset request"))
		Expect(sender.sent[0].HTML).To(ContainSubstring(`href="http://app/reset-password/xyz"`))
		Expect(sender.sent[0].Text).To(ContainSubstring("2 hours"))
	})

	It("surfaces delivery failures to the bus", func() {
		sender.err = errors.New("relay refused")
		e := events.NewPasswordResetRequestedEvent(4, "bob@corp.io", "Bob", "link", time.Now().Add(time.Minute))
		Expect(bus.PublishSync(ctx, e)).To(MatchError(ContainSubstring("relay refused")))
	})
})

var _ = Describe("NewSender", func() {
	It("falls back to logging without an smtp host", func() {
		s := mailer.NewSender(internal.MailConfig{}, logger.Discard())
		Expect(s).To(BeAssignableToTypeOf(&mailer.LogSender{}))
		Expect(s.Send(context.Background(), mailer.Message{To: "a@b.io"})).To(Succeed())
	})

	It("uses smtp when a host is set", func() {
		s := mailer.NewSender(internal.MailConfig{SMTPHost: "smtp.local", SMTPPort: 25, From: "noreply@corp.io"}, logger.Discard())
		Expect(s).To(BeAssignableToTypeOf(&mailer.SMTPSender{}))
	})
})
