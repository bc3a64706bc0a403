package transport

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-amqp/v3/pkg/amqp"
	"github.com/ThreeDotsLabs/watermill/message"
	amqp091 "github.com/rabbitmq/amqp091-go"

	"github.com/drblury/consolemvc/internal/runtime/config"
	"github.com/drblury/consolemvc/internal/runtime/metadata"
)

const (
	// rabbitQueueSuffix is appended to the topic, after an underscore, to name
	// the durable queue bound to the report exchange.
	rabbitQueueSuffix = "consolemvc"

	// rabbitAppID marks publishings produced by the report publisher.
	rabbitAppID = "consolemvc"
)

var (
	AmqpConnectionFactory = amqp.NewConnection
	AmqpPublisherFactory  = func(cfg amqp.Config, logger watermill.LoggerAdapter, conn *amqp.ConnectionWrapper) (message.Publisher, error) {
		return amqp.NewPublisherWithConnection(cfg, logger, conn)
	}
)

func rabbitTransport(conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	cfg := rabbitConfig(conf.RabbitMQURL)

	conn, err := AmqpConnectionFactory(cfg.Connection, logger)
	if err != nil {
		return Transport{}, err
	}
	publisher, err := AmqpPublisherFactory(cfg, logger, conn)
	if err != nil {
		return Transport{}, err
	}
	return Transport{Publisher: publisher}, nil
}

// rabbitConfig returns a durable fanout config whose publishings carry the
// report content type and exception class as AMQP properties.
func rabbitConfig(uri string) amqp.Config {
	cfg := amqp.NewDurablePubSubConfig(uri, amqp.GenerateQueueNameTopicNameWithSuffix(rabbitQueueSuffix))
	cfg.Connection.Reconnect = amqp.DefaultReconnectConfig()
	cfg.Marshaler = amqp.DefaultMarshaler{PostprocessPublishing: stampReportPublishing}
	return cfg
}

func stampReportPublishing(p amqp091.Publishing) amqp091.Publishing {
	p.AppId = rabbitAppID
	if contentType, ok := p.Headers[metadata.KeyContentType].(string); ok {
		p.ContentType = contentType
	}
	if className, ok := p.Headers[metadata.KeyClassName].(string); ok {
		p.Type = className
	}
	return p
}
