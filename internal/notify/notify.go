// Package notify announces finished builds to other systems.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// DefaultSubject is used when notify.subject is empty.
const DefaultSubject = "sitebuilder.build"

const publishTimeout = 5 * time.Second

// Notifier is told about every finished build.
type Notifier interface {
	Notify(ctx context.Context, report *build.Report) error
}

// Noop discards notifications.
type Noop struct{}

// Notify implements Notifier.
func (Noop) Notify(context.Context, *build.Report) error { return nil }

// publisher is the subset of *nats.Conn the notifier needs.
type publisher interface {
	Publish(subject string, data []byte) error
	FlushWithContext(ctx context.Context) error
	Close()
}

// NATS publishes the JSON build report on a subject.
type NATS struct {
	conn    publisher
	subject string
}

// New returns a Notifier for cfg: Noop when no server is configured.
func New(cfg config.NotifyConfig) (Notifier, error) {
	if !cfg.Enabled() {
		return Noop{}, nil
	}
	n, err := Connect(cfg.NATSURL, cfg.Subject)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// Connect dials the NATS server at url.
func Connect(url, subject string) (*NATS, error) {
	conn, err := nats.Connect(url,
		nats.Name("sitebuilder"),
		nats.Timeout(publishTimeout),
		nats.MaxReconnects(2),
	)
	if err != nil {
		return nil, ferrors.NotifyError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", url).
			Build()
	}
	slog.Info("NATS notifier connected", logfields.URL(url), slog.String("subject", subjectOrDefault(subject)))
	return newNATS(conn, subject), nil
}

func newNATS(conn publisher, subject string) *NATS {
	return &NATS{conn: conn, subject: subjectOrDefault(subject)}
}

func subjectOrDefault(subject string) string {
	if subject == "" {
		return DefaultSubject
	}
	return subject
}

// Subject is the subject reports are published on.
func (n *NATS) Subject() string { return n.subject }

// Notify publishes the sanitized report and waits for the server to
// acknowledge the flush.
func (n *NATS) Notify(ctx context.Context, report *build.Report) error {
	data, err := json.Marshal(report.SanitizedCopy())
	if err != nil {
		return ferrors.NotifyError("failed to marshal build report").WithCause(err).Build()
	}

	if err := n.conn.Publish(n.subject, data); err != nil {
		return n.fail(err, "failed to publish build report")
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return n.fail(err, "failed to flush build report")
	}

	slog.Debug("Published build report", slog.String("subject", n.subject), logfields.BuildID(report.ID))
	return nil
}

func (n *NATS) fail(err error, msg string) error {
	return ferrors.NotifyError(msg).
		WithCause(err).
		WithContext("subject", n.subject).
		Build()
}

// Close closes the connection.
func (n *NATS) Close() {
	if n.conn != nil {
		n.conn.Close()
	}
}
