// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"fundingos-workers/internal/models"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

type SNSClient struct {
	client   snsAPI
	topicARN string
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SNSClient{client: sns.NewFromConfig(cfg), topicARN: topicARN}, nil
}

func newSNSClientWithAPI(api snsAPI, topicARN string) *SNSClient {
	return &SNSClient{client: api, topicARN: topicARN}
}

// PublishDeadlineAlert sends the alert as JSON to the configured topic and
// returns the SNS message id. Urgency is carried as a message attribute so
// subscribers can filter on it.
func (s *SNSClient) PublishDeadlineAlert(ctx context.Context, alert models.DeadlineAlert) (string, error) {
	body, err := json.Marshal(alert)
	if err != nil {
		return "", fmt.Errorf("marshal deadline alert: %w", err)
	}

	attrs := map[string]types.MessageAttributeValue{}
	for name, value := range map[string]string{"urgency": alert.Urgency, "opportunityId": alert.OpportunityID} {
		if value == "" {
			continue
		}
		attrs[name] = types.MessageAttributeValue{DataType: awssdk.String("String"), StringValue: awssdk.String(value)}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn:          awssdk.String(s.topicARN),
		Subject:           awssdk.String(subject(alert)),
		Message:           awssdk.String(string(body)),
		MessageAttributes: attrs,
	})
	if err != nil {
		return "", err
	}
	return awssdk.ToString(out.MessageId), nil
}

// SNS subjects are limited to 100 characters.
func subject(alert models.DeadlineAlert) string {
	s := fmt.Sprintf("Deadline in %d days: %s", alert.DaysRemaining, alert.Title)
	if r := []rune(s); len(r) > 100 {
		return string(r[:100])
	}
	return s
}
