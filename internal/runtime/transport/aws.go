package transport

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-aws/sns"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	amazonsns "github.com/aws/aws-sdk-go-v2/service/sns"
	smithyendpoints "github.com/aws/smithy-go/endpoints"

	"github.com/drblury/consolemvc/internal/runtime/config"
	"github.com/drblury/consolemvc/internal/runtime/metadata"
)

var (
	AWSDefaultConfigLoader  = awsconfig.LoadDefaultConfig
	SNSTopicResolverFactory = sns.NewGenerateArnTopicResolver
	SNSPublisherFactory     = func(cfg sns.PublisherConfig, logger watermill.LoggerAdapter) (message.Publisher, error) {
		return sns.NewPublisher(cfg, logger)
	}
)

const (
	// localstackAccountID is used against a custom endpoint when no valid
	// account is configured.
	localstackAccountID = "000000000000"

	// snsSubjectLimit is the longest subject SNS accepts.
	snsSubjectLimit  = 100
	snsSubjectPrefix = "consolemvc: "
)

// awsTransport publishes reports to an SNS topic named after the report topic.
func awsTransport(ctx context.Context, conf *config.Config, logger watermill.LoggerAdapter) (Transport, error) {
	cfg, err := loadAWSConfig(ctx, conf)
	if err != nil {
		logger.Error("Failed to load AWS config", err, watermill.LogFields{"region": conf.AWSRegion})
		return Transport{}, err
	}

	pubConfig, err := snsPublisherConfig(conf, cfg)
	if err != nil {
		return Transport{}, err
	}
	logger.Info("Publishing exception reports to SNS", watermill.LogFields{
		"region":          cfg.Region,
		"custom_endpoint": len(pubConfig.OptFns) > 0,
	})

	publisher, err := SNSPublisherFactory(pubConfig, logger)
	if err != nil {
		return Transport{}, err
	}
	return Transport{Publisher: publisher}, nil
}

func loadAWSConfig(ctx context.Context, conf *config.Config) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if conf.AWSRegion != "" {
		opts = append(opts, awsconfig.WithRegion(conf.AWSRegion))
	}
	if conf.AWSAccessKeyID != "" && conf.AWSSecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(conf.AWSAccessKeyID, conf.AWSSecretAccessKey, ""),
		))
	}

	cfg, err := AWSDefaultConfigLoader(ctx, opts...)
	if err != nil {
		return aws.Config{}, err
	}
	if conf.AWSRegion != "" {
		cfg.Region = conf.AWSRegion
	}
	return cfg, nil
}

func snsPublisherConfig(conf *config.Config, cfg aws.Config) (sns.PublisherConfig, error) {
	endpoint, err := snsEndpoint(conf, cfg)
	if err != nil {
		return sns.PublisherConfig{}, err
	}

	resolver, err := SNSTopicResolverFactory(snsAccountID(conf.AWSAccountID, endpoint != nil), cfg.Region)
	if err != nil {
		return sns.PublisherConfig{}, fmt.Errorf("failed to create SNS topic resolver: %w", err)
	}

	pubConfig := sns.PublisherConfig{
		TopicResolver: resolver,
		AWSConfig:     cfg,
		Marshaler:     reportSNSMarshaler{},
	}
	if endpoint != nil {
		pubConfig.OptFns = append(pubConfig.OptFns, amazonsns.WithEndpointResolverV2(
			sns.OverrideEndpointResolver{Endpoint: smithyendpoints.Endpoint{URI: *endpoint}},
		))
	}
	return pubConfig, nil
}

// snsEndpoint returns the custom endpoint from the config, or the SDK's base
// endpoint. Nil selects the regional AWS endpoint.
func snsEndpoint(conf *config.Config, cfg aws.Config) (*url.URL, error) {
	raw := conf.AWSEndpoint
	if raw == "" {
		raw = aws.ToString(cfg.BaseEndpoint)
	}
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse AWS endpoint: %w", err)
	}
	return u, nil
}

// snsAccountID trims quotes and blanks from the configured account. Against a
// custom endpoint an account that is not twelve digits long becomes the
// LocalStack account.
func snsAccountID(configured string, customEndpoint bool) string {
	id := strings.Trim(configured, "\"' ")
	if customEndpoint && len(id) != 12 {
		return localstackAccountID
	}
	return id
}

// reportSNSMarshaler adds a readable subject for email and SMS subscribers
// and groups reports by exception class on FIFO topics.
type reportSNSMarshaler struct {
	sns.DefaultMarshalerUnmarshaler
}

func (m reportSNSMarshaler) Marshal(topicArn sns.TopicArn, msg *message.Message) *amazonsns.PublishInput {
	input := m.DefaultMarshalerUnmarshaler.Marshal(topicArn, msg)

	if className := msg.Metadata.Get(metadata.KeyClassName); className != "" {
		input.Subject = aws.String(snsSubject(className))
	}
	if strings.HasSuffix(string(topicArn), ".fifo") {
		if input.MessageGroupId == nil {
			input.MessageGroupId = aws.String(reportKey(msg))
		}
		if input.MessageDeduplicationId == nil {
			input.MessageDeduplicationId = aws.String(msg.UUID)
		}
	}
	return input
}

// snsSubject builds a single-line ASCII subject within the SNS limit.
func snsSubject(className string) string {
	subject := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, snsSubjectPrefix+className)
	if len(subject) > snsSubjectLimit {
		subject = subject[:snsSubjectLimit]
	}
	return subject
}
