package kafka_client

import (
	"context"
	"encoding/json"
	"fmt"
	"roicalculator/config"
	"roicalculator/types"
	"strconv"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.uber.org/zap"
)

var (
	KafkaProducer    *kafka.Producer
	KafkaAdminClient *kafka.AdminClient
	topic            string
)

// Publisher sends valuation events to the configured topic.
type Publisher struct{}

func (Publisher) Publish(event types.ValuationEvent) { SendMessage(event) }

func SendMessage(event types.ValuationEvent) {
	if KafkaProducer == nil {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		zap.L().Error("Error marshalling kafka message", zap.Error(err))
		return
	}

	zap.L().Sugar().Infof("Sending message to kafka: %s", message)
	err = KafkaProducer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(event.Symbol),
		Value:          message,
	}, nil)
	if err != nil {
		zap.L().Error("Error sending message to kafka: ", zap.Any("error", err.Error()))
	}
}

// Init creates the producer, starts the delivery-report loop and makes sure the
// topic exists.
func Init(bootstrapServers, eventTopic string) error {
	zap.L().Info("KAFKA_BOOTSTRAPSERVERS: ", zap.String("uri", bootstrapServers))
	topic = eventTopic

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": bootstrapServers,
		"client.id":         "roicalculator",
		"acks":              "all",
	})
	if err != nil {
		return fmt.Errorf("kafka producer initialization failed: %w", err)
	}
	KafkaProducer = producer

	admin, err := kafka.NewAdminClientFromProducer(producer)
	if err != nil {
		return fmt.Errorf("kafka admin client initialization failed: %w", err)
	}
	KafkaAdminClient = admin

	// Delivery report handler for produced messages
	go func() {
		for e := range KafkaProducer.Events() {
			switch ev := e.(type) {
			case *kafka.Message:
				if ev.TopicPartition.Error != nil {
					zap.L().Error("Kafka Delivery failed: ", zap.Any("error", ev.TopicPartition.Error.Error()))
				} else {
					zap.L().Sugar().Infof("Delivered message to %s", *ev.TopicPartition.Topic)
				}
			}
		}
	}()

	numParts, err := strconv.Atoi(config.GetEnv("KAFKA_TOPIC_PARTITIONS", "1"))
	if err != nil {
		numParts = 1
	}
	replicationFactor, err := strconv.Atoi(config.GetEnv("KAFKA_TOPIC_REPL_FACTOR", "1"))
	if err != nil {
		replicationFactor = 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	results, err := KafkaAdminClient.CreateTopics(
		ctx,
		[]kafka.TopicSpecification{{
			Topic:             topic,
			NumPartitions:     numParts,
			ReplicationFactor: replicationFactor}},
		kafka.SetAdminOperationTimeout(60*time.Second))
	if err != nil {
		zap.L().Error("Failed to create topic: ", zap.Any("error", err.Error()))
	}

	zap.L().Sugar().Infof("Connected to Kafka %s", results)
	return nil
}

func Close() {
	if KafkaAdminClient != nil {
		KafkaAdminClient.Close()
	}
	if KafkaProducer != nil {
		KafkaProducer.Flush(5000)
		KafkaProducer.Close()
	}
}
