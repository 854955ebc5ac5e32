// internal/common/aws/sns.go
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

// Publisher is the part of the SNS API the notifier uses.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client   Publisher
	topicARN string
}

func NewSNSClient(cfg aws.Config, topicARN string) *SNSClient {
	return &SNSClient{client: sns.NewFromConfig(cfg), topicARN: topicARN}
}

// NewSNSClientWith wraps an existing publisher.
func NewSNSClientWith(client Publisher, topicARN string) *SNSClient {
	return &SNSClient{client: client, topicARN: topicARN}
}

// PublishEvent publishes message to the topic with an event_type attribute
// subscribers can filter on.
func (s *SNSClient) PublishEvent(ctx context.Context, eventType, subject, message string) (string, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(subject),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(eventType)},
		},
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.MessageId), nil
}
