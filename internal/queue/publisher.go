package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher sends rating events to RabbitMQ.  A connection is dialled per
// publish; rating submissions are rare enough that a pooled channel is not
// worth the reconnect bookkeeping.
type Publisher struct {
    URL string
}

func NewPublisher(url string) *Publisher { return &Publisher{URL: url} }

// PublishRatingSubmitted publishes ev to the rating.submitted queue as a
// persistent JSON message.  Errors are logged and returned so the caller can
// choose to ignore them.
func (p *Publisher) PublishRatingSubmitted(ctx context.Context, ev RatingSubmittedEvent) error {
    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }
    return p.publish(ctx, RatingSubmittedQueue, body)
}

func (p *Publisher) publish(ctx context.Context, queueName string, body []byte) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    if err := declare(ch, queueName); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    // default exchange, routing key = queue name
    if err := ch.PublishWithContext(ctx, "", queueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// declare makes sure the durable queue exists.  Idempotent.
func declare(ch *amqp.Channel, name string) error {
    _, err := ch.QueueDeclare(name, true, false, false, false, nil)
    return err
}
