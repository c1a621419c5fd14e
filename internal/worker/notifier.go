package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	natsgo "github.com/nats-io/nats.go"

	"github.com/askhat-dev/travel-marketplace/internal/adapter/email"
	"github.com/askhat-dev/travel-marketplace/internal/domain/event"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/platform/metrics"
)

// Notifier consumes booking lifecycle events and sends the guest an email.
// It is the async half of the booking flow; the API never blocks on SMTP.
type Notifier struct {
	conn    *natsgo.Conn
	sender  email.Sender
	metrics *metrics.MetricsManager
	log     logger.Logger
	sub     *natsgo.Subscription
}

func NewNotifier(conn *natsgo.Conn, sender email.Sender, mm *metrics.MetricsManager, log logger.Logger) *Notifier {
	return &Notifier{
		conn:    conn,
		sender:  sender,
		metrics: mm,
		log:     log,
	}
}

// Start subscribes to all booking subjects. Message handling is sequential per
// subscription; NATS redelivery is not used, failures are logged and counted.
func (n *Notifier) Start(ctx context.Context) error {
	sub, err := n.conn.Subscribe(event.SubjectBookingAll, func(msg *natsgo.Msg) {
		n.handle(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", event.SubjectBookingAll, err)
	}
	n.sub = sub

	n.log.Infof("notification worker subscribed to %s", event.SubjectBookingAll)
	return nil
}

func (n *Notifier) Stop() {
	if n.sub != nil {
		if err := n.sub.Unsubscribe(); err != nil {
			n.log.Warnf("failed to unsubscribe: %v", err)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, msg *natsgo.Msg) {
	var evt event.BookingEvent
	if err := json.Unmarshal(msg.Data, &evt); err != nil {
		n.log.Errorf("dropping malformed event on %s: %v", msg.Subject, err)
		n.countEmail("malformed")
		return
	}

	if evt.GuestEmail == "" {
		n.log.Warnf("booking %s event has no guest email, skipping notification", evt.BookingID)
		n.countEmail("skipped")
		return
	}

	subject, body := composeEmail(msg.Subject, evt)
	if subject == "" {
		n.log.Debugf("no notification configured for subject %s", msg.Subject)
		return
	}

	if err := n.sender.Send(ctx, []string{evt.GuestEmail}, subject, "", body); err != nil {
		n.log.Errorf("failed to send %s email for booking %s: %v", msg.Subject, evt.BookingID, err)
		n.countEmail("failed")
		return
	}

	n.countEmail("sent")
	n.log.Infof("sent %s email for booking %s to %s", msg.Subject, evt.BookingID, evt.GuestEmail)
}

func (n *Notifier) countEmail(outcome string) {
	if n.metrics != nil {
		n.metrics.BookingEmailsTotal.WithLabelValues(outcome).Inc()
	}
}

func composeEmail(subject string, evt event.BookingEvent) (string, string) {
	name := evt.GuestName
	if name == "" {
		name = "traveller"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)

	switch subject {
	case event.SubjectBookingCreated:
		fmt.Fprintf(&b, "Thank you for your booking!\n\n")
		fmt.Fprintf(&b, "Your booking for %q is received and awaiting confirmation.\n", evt.ListingTitle)
	case event.SubjectBookingConfirmed:
		fmt.Fprintf(&b, "Good news! Your booking for %q has been confirmed by the host.\n", evt.ListingTitle)
	case event.SubjectBookingCancelled:
		fmt.Fprintf(&b, "Your booking has been cancelled.\n")
	default:
		return "", ""
	}

	fmt.Fprintf(&b, "\nBooking details:\n")
	fmt.Fprintf(&b, "  Reference: %s\n", evt.BookingID)
	if evt.ListingTitle != "" {
		fmt.Fprintf(&b, "  Listing:   %s\n", evt.ListingTitle)
	}
	fmt.Fprintf(&b, "  Check-in:  %s\n", evt.CheckIn.Format("2006-01-02"))
	fmt.Fprintf(&b, "  Check-out: %s\n", evt.CheckOut.Format("2006-01-02"))
	fmt.Fprintf(&b, "  Guests:    %d\n", evt.Guests)
	fmt.Fprintf(&b, "  Total:     %.2f\n", evt.TotalPrice)
	fmt.Fprintf(&b, "\nWe wish you a pleasant stay.\n")

	var title string
	switch subject {
	case event.SubjectBookingCreated:
		title = "Your booking request is received"
	case event.SubjectBookingConfirmed:
		title = "Your booking is confirmed"
	case event.SubjectBookingCancelled:
		title = "Your booking is cancelled"
	}
	return title, b.String()
}
