package events

import (
	"fmt"

	"go.uber.org/zap"
)

type Config struct {
	Driver           string // none | rabbitmq | kafka
	RabbitMQURL      string
	RabbitMQExchange string
	KafkaBrokers     []string
	KafkaTopic       string
}

// NewBroker returns the broker publisher selected by cfg.Driver.
func NewBroker(cfg Config, log *zap.Logger) (Publisher, error) {
	switch cfg.Driver {
	case "", "none":
		return Noop{}, nil
	case "rabbitmq":
		p, err := DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, err
		}
		log.Info("order events -> rabbitmq", zap.String("exchange", cfg.RabbitMQExchange))
		return p, nil
	case "kafka":
		if len(cfg.KafkaBrokers) == 0 {
			return nil, fmt.Errorf("EVENTS_DRIVER=kafka needs KAFKA_BROKERS")
		}
		log.Info("order events -> kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, fmt.Errorf("unsupported EVENTS_DRIVER %q", cfg.Driver)
	}
}
