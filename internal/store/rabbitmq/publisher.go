// Package rabbitmq publishes evaluation jobs for the background judge
// worker. Queue topology: the main queue dead-letters to a DLQ, and a
// TTL-based retry queue feeds messages back into the main queue, so the
// worker can requeue transient failures without hot-looping.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 5 * time.Second

// JobMessage is the wire format for one queued evaluation job.
type JobMessage struct {
	JobID          string `json:"job_id"`
	ConversationID string `json:"conversation_id"`
}

type Publisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

func NewPublisher(url, queue string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := DeclareTopology(ch, queue); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return &Publisher{conn: conn, ch: ch, queue: queue}, nil
}

// DeclareTopology declares the main, retry and dead-letter queues for
// the given base queue name. Publisher and worker both call it so either
// side can start first.
func DeclareTopology(ch *amqp.Channel, queue string) error {
	declarations := []struct {
		name string
		args amqp.Table
	}{
		{queue + ".dlq", nil},
		{queue + ".retry", amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue,
		}},
		{queue, amqp.Table{
			"x-dead-letter-exchange":    "",
			"x-dead-letter-routing-key": queue + ".dlq",
		}},
	}
	for _, d := range declarations {
		if _, err := ch.QueueDeclare(
			d.name,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			d.args,
		); err != nil {
			return fmt.Errorf("declare queue %s: %w", d.name, err)
		}
	}
	return nil
}

func (p *Publisher) PublishJob(ctx context.Context, jobID, conversationID string) error {
	body, err := json.Marshal(JobMessage{JobID: jobID, ConversationID: conversationID})
	if err != nil {
		return err
	}

	cctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	return p.ch.PublishWithContext(cctx,
		"",      // default exchange
		p.queue, // routing key = queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
