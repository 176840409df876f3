package broker

import (
	"beacon/internal/config"
	"beacon/internal/logger"
)

func NewProducer(cfg config.BrokerConfig, log logger.Logger) Producer {
	return NewKafkaProducer(cfg.Kafka, log)
}

func NewConsumer(cfg config.BrokerConfig, log logger.Logger) Consumer {
	return NewKafkaConsumer(cfg.Kafka, log)
}
