package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"veriflow/internal/domain"
	"veriflow/internal/pkg/mailer"
	"veriflow/internal/pkg/metrics"
)

// Dispatcher drains the event queue and performs delivery: websocket push,
// in-app persistence, email, and cross-instance relay. Workflow services
// only ever call Publish, which cannot block and cannot fail, so a slow
// mail provider or a dead redis never rolls back a state transition.
type Dispatcher struct {
	queue         chan domain.Event
	hub           *Hub
	notifications NotificationRepository
	mail          mailer.Mailer
	bridge        *Bridge // nil when redis is not configured
	log           *zap.Logger
}

func NewDispatcher(queueSize int, hub *Hub, repo NotificationRepository, mail mailer.Mailer, bridge *Bridge, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		queue:         make(chan domain.Event, queueSize),
		hub:           hub,
		notifications: repo,
		mail:          mail,
		bridge:        bridge,
		log:           log,
	}
}

// Publish enqueues an event without blocking. When the queue is full the
// event is dropped and counted; callers never wait on delivery.
func (d *Dispatcher) Publish(ev domain.Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	select {
	case d.queue <- ev:
	default:
		metrics.NotificationsDropped.Inc()
		d.log.Warn("event queue full, dropping event", zap.String("type", string(ev.Type)))
	}
}

// Run blocks until ctx is cancelled, delivering queued events in order.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.queue:
			d.deliver(ctx, ev, true)
		}
	}
}

// deliver fans one event out to every channel it targets. relay controls
// whether the event is also published to other instances; events received
// FROM the bridge set relay=false to avoid loops.
func (d *Dispatcher) deliver(ctx context.Context, ev domain.Event, relay bool) {
	d.deliverSocket(ev)

	// Persist an in-app copy only for events addressed to a single user.
	if ev.TargetUserID != 0 {
		n := &domain.Notification{
			UserID:    ev.TargetUserID,
			Type:      ev.Type,
			Message:   ev.Message,
			Data:      ev.Payload,
			CreatedAt: ev.Timestamp,
		}
		if err := d.notifications.Create(ctx, n); err != nil {
			d.log.Error("persist notification failed",
				zap.Int64("user_id", ev.TargetUserID), zap.Error(err))
		}
	}

	if ev.Email != nil && ev.Email.To != "" {
		if err := d.mail.Send(ctx, ev.Email.To, ev.Email.Template, ev.Email.Context); err != nil {
			d.log.Error("email delivery failed",
				zap.String("to", ev.Email.To), zap.Error(err))
		} else {
			metrics.NotificationsDelivered.WithLabelValues("email").Inc()
		}
	}

	if relay && d.bridge != nil {
		if err := d.bridge.Publish(ctx, ev); err != nil {
			d.log.Warn("bridge publish failed", zap.Error(err))
		}
	}
}

// DeliverRemote handles an event relayed from another instance. Only the
// websocket leg runs here: the origin instance already persisted the in-app
// copy and sent the email.
func (d *Dispatcher) DeliverRemote(ev domain.Event) {
	d.deliverSocket(ev)
}

func (d *Dispatcher) deliverSocket(ev domain.Event) {
	switch {
	case ev.Broadcast == domain.BroadcastAll:
		if d.hub.BroadcastToAll(ev) > 0 {
			metrics.NotificationsDelivered.WithLabelValues("websocket").Inc()
		}
	case ev.Broadcast == domain.BroadcastAdmins:
		if d.hub.BroadcastToAdmins(ev) > 0 {
			metrics.NotificationsDelivered.WithLabelValues("websocket").Inc()
		}
	case ev.TargetUserID != 0:
		if d.hub.SendToUser(ev.TargetUserID, ev) {
			metrics.NotificationsDelivered.WithLabelValues("websocket").Inc()
		}
	}
}
