package rabbitmq_client

import (
	"encoding/json"
	"fmt"
	"roicalculator/types"
	"roicalculator/utils/constants"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

var (
	Connection *amqp.Connection
	Channel    *amqp.Channel
	Queue      amqp.Queue
)

// Publisher sends valuation events to the durable valuation queue.
type Publisher struct{}

func (Publisher) Publish(event types.ValuationEvent) { SendMessage(event) }

func Close() {
	if Channel != nil {
		Channel.Close()
	}
	if Connection != nil {
		Connection.Close()
	}
}

func SendMessage(event types.ValuationEvent) {
	if Channel == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Error marshalling rabbitmq message", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending message to rabbitmq: %s", message)

	err = Channel.Publish(
		"",         // Exchange (empty means default)
		Queue.Name, // Routing key (queue name in this case)
		false,      // Mandatory
		false,      // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Body:         message,
		})

	if err != nil {
		zap.L().Error("Error publishing message to rabbitmq: ", zap.Any("error", err.Error()))
		return
	}

	zap.L().Info("Successfully sent message to rabbitmq.", zap.String("symbol", event.Symbol))
}

// Init dials the broker, opens a channel and declares the valuation queue.
func Init(server, port, user, pass string) error {
	zap.L().Sugar().Infof("RabbitMQ Server: %s", server)
	zap.L().Sugar().Infof("RabbitMQ Port: %s", port)
	zap.L().Sugar().Infof("RabbitMQ User: %s", user)

	conn, err := amqp.Dial(fmt.Sprintf("amqp://%s:%s@%s:%s/", user, pass, server, port))
	if err != nil {
		return fmt.Errorf("rabbitmq initialization failed: %w", err)
	}
	Connection = conn

	ch, err := Connection.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq - failed to open a channel: %w", err)
	}
	Channel = ch

	q, err := ch.QueueDeclare(
		constants.DefaultQueueName, // Name of the queue
		true,                       // Durable
		false,                      // Delete when unused
		false,                      // Exclusive
		false,                      // No-wait
		nil,                        // Arguments
	)
	if err != nil {
		return fmt.Errorf("rabbitmq - failed to declare a queue: %w", err)
	}
	Queue = q

	zap.L().Info("Connected to RabbitMQ.")
	return nil
}
