package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "os"
    "path/filepath"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// AuditLogFile is the file, inside the consumer's directory, that receives
// one line per lab event.
const AuditLogFile = "lab-events.log"

// AuditConsumer drains the lab.events queue into an append-only log file.
type AuditConsumer struct {
    URL string
    Dir string
    Log zerolog.Logger
}

// Run connects to RabbitMQ, declares the events queue and consumes until
// ctx is cancelled.  Broker failures trigger a reconnect with exponential
// backoff capped at 30s; a malformed message is rejected without requeue so
// the loop keeps going.
func (c *AuditConsumer) Run(ctx context.Context) error {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(c.URL)
        if err != nil {
            c.Log.Warn().Err(err).Dur("retry_in", backoff).Msg("audit consumer dial failed")
            if !sleep(ctx, backoff) {
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        err = c.consumeLoop(ctx, conn)
        _ = conn.Close()
        if ctx.Err() != nil {
            return ctx.Err()
        }
        c.Log.Warn().Err(err).Msg("audit consume loop ended; reconnecting")
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

func (c *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        c.Log.Warn().Err(err).Msg("audit consumer set QoS failed")
    }
    if _, err := ch.QueueDeclare(EventsQueue, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }
    msgs, err := ch.Consume(EventsQueue, "", false, false, false, false, nil)
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
            if err := c.HandleMessage(d.Body); err != nil {
                c.Log.Error().Err(err).Msg("audit consumer handle message failed")
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

// HandleMessage decodes one envelope and appends it to the audit log.
func (c *AuditConsumer) HandleMessage(body []byte) error {
    var env Envelope
    if err := json.Unmarshal(body, &env); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if env.Type == "" {
        return errors.New("envelope without type")
    }
    if err := os.MkdirAll(c.Dir, 0o755); err != nil {
        return fmt.Errorf("mkdir %s: %w", c.Dir, err)
    }
    f, err := os.OpenFile(filepath.Join(c.Dir, AuditLogFile), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    // one JSON object per line, easy to grep and to ship
    fl := zerolog.New(f)
    fl.Info().
        Str("event_id", env.ID).
        Str("type", env.Type).
        Time("occurred_at", env.OccurredAt).
        RawJSON("payload", env.Payload).
        Send()
    return nil
}
