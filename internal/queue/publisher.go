package queue

import (
    "context"
    "encoding/json"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/rs/zerolog"
)

// Publisher delivers envelopes to a named queue.
type Publisher interface {
    Publish(ctx context.Context, queue string, env Envelope) error
}

// NopPublisher drops every message.  It is used when events are disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Envelope) error { return nil }

// AMQPPublisher publishes persistent JSON messages to RabbitMQ.  It dials
// per publish: writes are infrequent operator actions and a fresh
// connection never outlives a broker restart.
type AMQPPublisher struct {
    URL     string
    Timeout time.Duration
    Log     zerolog.Logger
}

// NewAMQPPublisher returns a publisher for the broker at url.
func NewAMQPPublisher(url string, log zerolog.Logger) *AMQPPublisher {
    return &AMQPPublisher{URL: url, Timeout: 5 * time.Second, Log: log}
}

// Publish declares the durable queue (idempotent) and sends env to it.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *AMQPPublisher) Publish(ctx context.Context, queue string, env Envelope) error {
    if p.Timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, p.Timeout)
        defer cancel()
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        p.Log.Error().Err(err).Str("queue", queue).Msg("rabbitmq dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        p.Log.Error().Err(err).Msg("rabbitmq channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(
        queue, // name
        true,  // durable
        false, // autoDelete
        false, // exclusive
        false, // noWait
        nil,   // args
    ); err != nil {
        p.Log.Error().Err(err).Str("queue", queue).Msg("rabbitmq queue declare failed")
        return err
    }

    body, err := json.Marshal(env)
    if err != nil {
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent, // store on disk
        MessageId:    env.ID,
        Type:         env.Type,
        Timestamp:    env.OccurredAt,
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx,
        "",    // default exchange
        queue, // routing key = queue name
        false, // mandatory
        false, // immediate
        pub,
    ); err != nil {
        p.Log.Error().Err(err).Str("queue", queue).Str("type", env.Type).Msg("rabbitmq publish failed")
        return err
    }
    return nil
}
