package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"ragchat/internal/model"
)

type QueryLogPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewQueryLogPublisher(conn *amqp.Connection, queueName string) *QueryLogPublisher {
	return &QueryLogPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *QueryLogPublisher) Publish(ctx context.Context, entry model.QueryLog) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue failed: %w", err)
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal query log payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish query log failed: %w", err)
	}
	return nil
}
