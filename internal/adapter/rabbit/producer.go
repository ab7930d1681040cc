package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nurbek-a/driver-dispatch/internal/domain/models"
	"github.com/nurbek-a/driver-dispatch/pkg/metrics"
	wrap "github.com/nurbek-a/driver-dispatch/pkg/logger/wrapper"
	"github.com/nurbek-a/driver-dispatch/pkg/rabbit"
	"github.com/rabbitmq/amqp091-go"
)

const (
	exchange = "driver_topic"

	serviceName = "dispatch"
)

// DispatchProducer publishes dispatch domain events. Delivery is
// fire-and-forget: downstream consumers own retries.
type DispatchProducer struct {
	client *rabbit.RabbitMQ
}

func NewDispatchProducer(client *rabbit.RabbitMQ) *DispatchProducer {
	return &DispatchProducer{
		client: client,
	}
}

// Setup declares the topic exchange. Safe to call on every start.
func (r *DispatchProducer) Setup() error {
	return r.client.Channel.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	)
}

// PublishDriverAvailable announces dispatch reachability of a driver.
func (r *DispatchProducer) PublishDriverAvailable(ctx context.Context, msg models.DriverAvailableMessage) error {
	const op = "DispatchProducer.PublishDriverAvailable"

	key := fmt.Sprintf("driver.available.%s", msg.DriverID)
	err := r.publish(ctx, key, msg)
	metrics.RecordRabbitMQPublish(serviceName, key, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

// PublishBeaconChanged records an accepted work-log transition.
func (r *DispatchProducer) PublishBeaconChanged(ctx context.Context, msg models.BeaconChangedMessage) error {
	const op = "DispatchProducer.PublishBeaconChanged"

	key := fmt.Sprintf("driver.beacon.%s", msg.DriverID)
	err := r.publish(ctx, key, msg)
	metrics.RecordRabbitMQPublish(serviceName, key, err)
	if err != nil {
		ctx = wrap.WithAction(ctx, "publish_message")
		return wrap.Error(ctx, fmt.Errorf("%s: %w", op, err))
	}

	return nil
}

func (r *DispatchProducer) publish(ctx context.Context, key string, msg any) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := r.client.Channel.PublishWithContext(
		ctx,
		exchange, // exchange
		key,      // routing key
		false,    // mandatory
		false,    // immediate
		amqp091.Publishing{
			ContentType: "application/json",
			Body:        body,
			Timestamp:   time.Now(),
		},
	); err != nil {
		return fmt.Errorf("failed to publish with context: %w", err)
	}

	return nil
}
