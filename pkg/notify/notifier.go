package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/klokku/calsync/internal/config"
	"github.com/klokku/calsync/internal/event_bus"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

// Connection is the part of *nats.Conn the notifier needs.
type Connection interface {
	Publish(subject string, data []byte) error
}

// Connect opens a NATS connection that keeps reconnecting in the background.
func Connect(cfg config.Nats) (*nats.Conn, error) {
	options := []nats.Option{
		nats.Name("calsync"),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(10),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warnf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.Url, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Url, err)
	}
	log.Infof("Connected to NATS at %s", conn.ConnectedUrl())
	return conn, nil
}

// Notifier forwards reconciliation outcomes from the event bus to NATS as JSON.
// Executed actions go to "<subject>.action", per-calendar summaries to
// "<subject>.finished".
type Notifier struct {
	conn    Connection
	subject string
}

func NewNotifier(conn Connection, subject string) *Notifier {
	return &Notifier{conn: conn, subject: subject}
}

func (n *Notifier) ActionSubject() string   { return n.subject + ".action" }
func (n *Notifier) FinishedSubject() string { return n.subject + ".finished" }

// Subscribe registers the notifier on bus and returns a function removing it.
func (n *Notifier) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	unsubscribeAction := event_bus.SubscribeTyped(bus, event_bus.ReconciliationActionExecuted,
		func(e event_bus.EventT[event_bus.ActionExecuted]) error {
			return n.publish(n.ActionSubject(), e.Data)
		})
	unsubscribeFinished := event_bus.SubscribeTyped(bus, event_bus.ReconciliationFinished,
		func(e event_bus.EventT[event_bus.CalendarReconciled]) error {
			return n.publish(n.FinishedSubject(), e.Data)
		})
	return func() {
		unsubscribeAction()
		unsubscribeFinished()
	}
}

func (n *Notifier) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := n.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish notification to %s: %w", subject, err)
	}
	log.Debugf("Published notification to %s", subject)
	return nil
}
