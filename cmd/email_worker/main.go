package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/config"
	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/mailer"
)

// Consumes welcome email jobs and sends them through Mailgun.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env)
	sender := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq connection failed")
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.WithError(err).Fatal("rabbitmq channel failed")
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(cfg.EmailQueue, true, false, false, false, nil); err != nil {
		logger.WithError(err).Fatal("queue declare failed")
	}
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos failed")
	}

	deliveries, err := ch.Consume(cfg.EmailQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	logger.WithField("queue", cfg.EmailQueue).Info("email worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("email worker stopping")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Error("delivery channel closed")
				return
			}
			handle(logger, sender, cfg.MailSendEnabled, d)
		}
	}
}

func handle(logger *logrus.Logger, sender *mailer.Mailgun, sendEnabled bool, d amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Error("malformed job, dropping")
		_ = d.Nack(false, false)
		return
	}

	if !sendEnabled {
		logger.WithField("to", job.To).Info("sending disabled, job acked without delivery")
		_ = d.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sender.Send(ctx, job.To, job.Subject, job.Text); err != nil {
		logger.WithError(err).WithField("to", job.To).Error("send failed, requeueing")
		_ = d.Nack(false, true)
		return
	}

	logger.WithField("to", job.To).Info("email sent")
	_ = d.Ack(false)
}
