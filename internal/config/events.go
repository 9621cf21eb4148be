package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/exam-studio/internal/events"
)

const (
	PublisherKafka     = "kafka"
	PublisherGoChannel = "gochannel"
	PublisherMock      = "mock"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled      bool   `env:"EVENTS_ENABLED" envDefault:"false"`
	Publisher    string `env:"EVENTS_PUBLISHER" envDefault:"gochannel"` // kafka, gochannel or mock
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	Topic        string `env:"EVENTS_TOPIC" envDefault:"exam-studio-events"`
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	cfg := events.PublisherConfig{
		KafkaBrokers: c.GetKafkaBrokers(),
		TopicName:    c.Topic,
		Logger:       logger,
	}

	switch c.Publisher {
	case PublisherKafka:
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.Topic)
		return events.NewKafkaEventPublisher(cfg)
	case PublisherGoChannel:
		logger.Info("Creating in-process event publisher", "topic", c.Topic)
		publisher, _ := events.NewGoChannelEventPublisher(cfg)
		return publisher, nil
	case PublisherMock:
		logger.Info("Using mock event publisher")
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
