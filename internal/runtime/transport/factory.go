// Package transport builds the watermill publisher that carries exception
// reports to the configured broker.
package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/drblury/consolemvc/internal/runtime/config"
	errspkg "github.com/drblury/consolemvc/internal/runtime/errors"
	"github.com/drblury/consolemvc/internal/runtime/metadata"
)

// channelBuffer bounds the reports queued for a slow in-process subscriber.
const channelBuffer = 64

// Transport is the publisher produced by a factory. Subscriber is only set
// by transports that can also consume in process (the go channel).
type Transport struct {
	Publisher  message.Publisher
	Subscriber message.Subscriber
}

// Enabled reports whether the transport carries a publisher.
func (t Transport) Enabled() bool {
	return t.Publisher != nil
}

// Close closes the publisher and, when distinct, the subscriber.
func (t Transport) Close() error {
	var firstErr error
	if t.Publisher != nil {
		firstErr = t.Publisher.Close()
	}
	if t.Subscriber != nil && any(t.Subscriber) != any(t.Publisher) {
		if err := t.Subscriber.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Factory abstracts how report transports are initialised.
type Factory interface {
	Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error)
}

// DefaultFactory returns the built-in factory covering every transport
// named by config.Config.ReportTransport.
func DefaultFactory() Factory {
	return defaultFactory{}
}

type defaultFactory struct{}

func (defaultFactory) Build(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	if conf == nil {
		return Transport{}, errspkg.ErrConfigRequired
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}

	switch strings.ToLower(strings.TrimSpace(conf.ReportTransport)) {
	case "", "none":
		return Transport{}, nil
	case "channel", "gochannel":
		return channelTransport(logger), nil
	case "kafka":
		return kafkaTransport(conf, logger)
	case "rabbitmq":
		return rabbitTransport(conf, logger)
	case "nats":
		return natsTransport(conf, logger)
	case "http":
		return httpTransport(conf, logger)
	case "aws":
		return awsTransport(ctx, conf, logger)
	}
	return Transport{}, fmt.Errorf("%w: %q", errspkg.ErrUnknownTransport, conf.ReportTransport)
}

// channelTransport keeps reports in process. The go channel is both the
// publisher and the subscriber.
func channelTransport(logger watermill.LoggerAdapter) Transport {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: channelBuffer}, logger)
	return Transport{Publisher: pubSub, Subscriber: pubSub}
}

// reportKey groups reports of the same exception class. Reports without a
// class fall back to their error code, then to the message UUID.
func reportKey(msg *message.Message) string {
	for _, key := range []string{metadata.KeyClassName, metadata.KeyError} {
		if v := msg.Metadata.Get(key); v != "" {
			return v
		}
	}
	return msg.UUID
}
