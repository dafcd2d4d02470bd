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
	"github.com/quranapp/backend/pkg/whatsapp"
)

// Consumes OTP delivery jobs and sends them through the Fonnte gateway.
// Failed sends are requeued so Rabbit redelivers until the send succeeds.
func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-whatsapp-worker", cfg.Env)
	sender := whatsapp.NewFonnte(cfg.FonnteAPIURL, cfg.FonnteToken)

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

	if _, err := ch.QueueDeclare(cfg.WhatsAppQueue, true, false, false, false, nil); err != nil {
		logger.WithError(err).Fatal("queue declare failed")
	}
	if err := ch.Qos(16, 0, false); err != nil {
		logger.WithError(err).Fatal("qos failed")
	}

	deliveries, err := ch.Consume(cfg.WhatsAppQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.WithError(err).Fatal("consume failed")
	}

	logger.WithField("queue", cfg.WhatsAppQueue).Info("whatsapp worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-quit:
			logger.Info("whatsapp worker stopping")
			return
		case d, ok := <-deliveries:
			if !ok {
				logger.Error("delivery channel closed")
				return
			}
			handle(logger, sender, cfg.WASendEnabled, d)
		}
	}
}

func handle(logger *logrus.Logger, sender *whatsapp.Fonnte, sendEnabled bool, d amqp.Delivery) {
	var job whatsapp.Job
	if err := json.Unmarshal(d.Body, &job); err != nil {
		logger.WithError(err).Error("malformed job, dropping")
		_ = d.Nack(false, false)
		return
	}

	if !sendEnabled {
		logger.WithField("target", job.Target).Info("sending disabled, job acked without delivery")
		_ = d.Ack(false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := sender.Send(ctx, job.Target, job.Message); err != nil {
		logger.WithError(err).WithField("target", job.Target).Error("send failed, requeueing")
		_ = d.Nack(false, true)
		return
	}

	logger.WithField("target", job.Target).Info("otp delivered")
	_ = d.Ack(false)
}
