// Package rabbitmq публикует события об учётных записях в RabbitMQ.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/cookie-auth/internal/models"
)

// RoutingKeyRegistered — ключ маршрутизации события регистрации.
const RoutingKeyRegistered = "account.registered"

// Channel — часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RegisteredEvent — тело события о новой учётной записи.
type RegisteredEvent struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// Publisher отправляет события об учётных записях в exchange.
type Publisher struct {
	ch       Channel
	exchange string
	now      func() time.Time
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange, now: time.Now}
}

// PublishRegistered публикует событие account.registered.
func (p *Publisher) PublishRegistered(ctx context.Context, profile models.Profile) error {
	const op = "rabbitmq.PublishRegistered"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	return PublishMessage(p.ch, p.exchange, RoutingKeyRegistered, RegisteredEvent{
		UserID:       profile.ID,
		Email:        profile.Email,
		FullName:     profile.FullName,
		RegisteredAt: p.now().UTC(),
	})
}

// PublishMessage публикует сообщение в RabbitMQ в виде JSON.
func PublishMessage(ch Channel, exchange string, routingkey string, message any) error {
	const op = "rabbitmq.PublishMessage"
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		routingkey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
