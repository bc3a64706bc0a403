package transport

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v3/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/drblury/consolemvc/internal/runtime/config"
)

// kafkaClientID identifies report producers to the brokers.
const kafkaClientID = "consolemvc-reports"

var KafkaPublisherFactory = func(cfg kafka.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
	return kafka.NewPublisher(cfg, logger)
}

// kafkaTransport publishes reports keyed by exception class, so reports of
// one class land on one partition in publish order. Producer calls are
// wrapped in OpenTelemetry spans.
func kafkaTransport(conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	saramaConfig := kafka.DefaultSaramaSyncPublisherConfig()
	saramaConfig.ClientID = kafkaClientID

	publisher, err := KafkaPublisherFactory(kafka.PublisherConfig{
		Brokers:               conf.KafkaBrokers,
		Marshaler:             kafka.NewWithPartitioningMarshaler(reportPartitionKey),
		OverwriteSaramaConfig: saramaConfig,
		OTELEnabled:           true,
	}, logger)
	if err != nil {
		return Transport{}, err
	}
	return Transport{Publisher: publisher}, nil
}

func reportPartitionKey(_ string, msg *message.Message) (string, error) {
	return reportKey(msg), nil
}
