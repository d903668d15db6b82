package publishers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/samvad-hq/samvad-news-digest/internal/logger"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsPublisher sends one message per source. Queues whose URL ends in
// ".fifo" get a message group and a deduplication id.
type sqsPublisher struct {
	id       string
	queueURL string
	group    string
	fifo     bool
	client   sqsClient
	log      logger.Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q: sqs block missing", cfg.ID)
	}
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.Credentials)
	if err != nil {
		return nil, err
	}
	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		group:    cfg.SQS.MessageGroupID,
		fifo:     strings.HasSuffix(cfg.SQS.QueueURL, ".fifo"),
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: make(map[string]types.MessageAttributeValue, 2),
	}
	for k, v := range evt.attributes() {
		input.MessageAttributes[k] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(v),
		}
	}
	if s.fifo {
		group := s.group
		if group == "" {
			group = evt.SourceID
		}
		input.MessageGroupId = aws.String(group)
		input.MessageDeduplicationId = aws.String(evt.dedupKey())
	}

	out, err := s.client.SendMessage(ctx, input)
	if err != nil {
		s.log.ErrorObj("sqs send failed", "publisher_sqs_error", map[string]any{
			"publisher_id": s.id,
			"source_id":    evt.SourceID,
			"error":        err.Error(),
		})
		return fmt.Errorf("sqs send: %w", err)
	}
	s.log.DebugObj("sqs message sent", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"source_id":    evt.SourceID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
