// Package alertsender assembles and runs the worker that consumes risk
// alerts from the broker and delivers them by email.
package alertsender

import (
	"context"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/solvradar/solvency-radar/internal/config"
	"github.com/solvradar/solvency-radar/internal/lib/rabbitmq"
	smtptransport "github.com/solvradar/solvency-radar/internal/lib/smtp"
	senderservice "github.com/solvradar/solvency-radar/internal/services/alertsender"
)

// App owns the broker connection and the sender service.
type App struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	sender *senderservice.Service
	logger *slog.Logger
}

// New connects to the broker and builds the sender service.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	conn, err := rabbitmq.Connect(cfg.RabbitMQConnection, 5, 3*time.Second)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetAlertQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	transport := smtptransport.NewTransport(cfg, logger)
	sender := senderservice.New(transport, logger)

	return &App{
		conn:   conn,
		ch:     ch,
		sender: sender,
		logger: logger,
	}, nil
}

// Run consumes the alert queue until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	for _, q := range rabbitmq.GetAlertQueues() {
		if err := rabbitmq.ConsumeMessages(ctx, a.ch, q.QueueName, a.sender.SendRiskAlert); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", q.QueueName), slog.Any("err", err))
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("alert sender shutting down gracefully")

	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", slog.Any("err", err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", slog.Any("err", err))
	}

	return nil
}
