package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

// Longest subject SNS accepts; it must stay under 100 characters.
const maxSNSSubject = 99

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// snsPublisher publishes one notification per source. FIFO topics (ARN
// ending in ".fifo") are grouped by source id.
type snsPublisher struct {
	id       string
	topicARN string
	fifo     bool
	client   snsClient
	log      logger.Logger
}

func newSNSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SNS == nil {
		return nil, fmt.Errorf("publisher %q: sns block missing", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.Region, cfg.SNS.Credentials)
	if err != nil {
		return nil, err
	}
	return &snsPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     strings.HasSuffix(cfg.SNS.TopicARN, ".fifo"),
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *snsPublisher) ID() string   { return s.id }
func (s *snsPublisher) Type() string { return TypeSNS }

func (s *snsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	input := &sns.PublishInput{
		TopicArn:          aws.String(s.topicARN),
		Message:           aws.String(string(body)),
		Subject:           aws.String(snsSubject(evt)),
		MessageAttributes: make(map[string]types.MessageAttributeValue, 2),
	}
	for k, v := range evt.attributes() {
		input.MessageAttributes[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	if s.fifo {
		input.MessageGroupId = aws.String(evt.SourceID)
		input.MessageDeduplicationId = aws.String(evt.dedupKey())
	}

	out, err := s.client.Publish(ctx, input)
	if err != nil {
		s.log.ErrorObj("sns publish failed", "publisher_sns_error", map[string]any{
			"publisher_id": s.id,
			"source_id":    evt.SourceID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sns publish: %w", err)
	}
	s.log.DebugObj("sns notification published", "publisher_sns_delivery", map[string]any{
		"publisher_id": s.id,
		"source_id":    evt.SourceID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}

// snsSubject is "digest: <source name>", cut to the SNS limit on a rune
// boundary.
func snsSubject(evt Event) string {
	subject := "digest: " + evt.SourceName
	if evt.Result.Failed() {
		subject += " (failed)"
	}
	for len(subject) > maxSNSSubject {
		_, size := utf8.DecodeLastRuneInString(subject)
		subject = subject[:len(subject)-size]
	}
	return subject
}
