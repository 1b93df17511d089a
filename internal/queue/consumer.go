package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// EventHook is invoked after a rating event has been written to the audit
// log.  The server uses it to drop cached admin dashboard responses.
type EventHook func(ctx context.Context, ev RatingSubmittedEvent)

// Consumer drains rating.submitted, appends one line per event to AuditPath
// and calls OnEvent.
type Consumer struct {
    URL       string
    AuditPath string
    OnEvent   EventHook
}

// Run dials the broker and consumes until ctx is cancelled.  Dial failures
// back off exponentially up to 30s; a closed delivery channel triggers a
// reconnect.  Bad messages are rejected without requeue so the loop never
// spins on a poison message.
func (c *Consumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            log.Printf("rating-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        log.Printf("rating-consumer: consume loop ended: %v; reconnecting", err)
        if !sleep(ctx, 2*time.Second) {
            return ctx.Err()
        }
    }
}

func sleep(ctx context.Context, d time.Duration) bool {
    t := time.NewTimer(d)
    defer t.Stop()
    select {
    case <-ctx.Done():
        return false
    case <-t.C:
        return true
    }
}

func (c *Consumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("rating-consumer: set QoS failed: %v", err)
    }
    if err := declare(ch, RatingSubmittedQueue); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(RatingSubmittedQueue, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := c.Handle(ctx, d.Body); err != nil {
                log.Printf("rating-consumer: handle message failed: %v", err)
                _ = d.Nack(false, false)
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// Handle processes one message body.  Exported so it can be driven without
// a broker.
func (c *Consumer) Handle(ctx context.Context, body []byte) error {
    var ev RatingSubmittedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.StoreID == 0 || ev.UserID == 0 {
        return errors.New("event missing store_id or user_id")
    }
    if err := appendAudit(c.AuditPath, ev); err != nil {
        return err
    }
    if c.OnEvent != nil {
        c.OnEvent(ctx, ev)
    }
    return nil
}

// FormatAuditLine renders ev as a single human-readable log line.
func FormatAuditLine(ev RatingSubmittedEvent) string {
    return fmt.Sprintf("[%s] Rating submitted | rating_id=%d | store_id=%d | user_id=%d | rating=%d\n",
        ev.SubmittedAt, ev.RatingID, ev.StoreID, ev.UserID, ev.Value)
}

func appendAudit(path string, ev RatingSubmittedEvent) error {
    if path == "" {
        return nil
    }
    if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
        return fmt.Errorf("mkdir audit dir: %w", err)
    }
    f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open audit log: %w", err)
    }
    defer f.Close()
    if _, err := f.WriteString(FormatAuditLine(ev)); err != nil {
        return fmt.Errorf("write audit log: %w", err)
    }
    return nil
}
