package aws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundingos-workers/internal/models"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestPublishDeadlineAlert(t *testing.T) {
	api := new(mockSNS)
	client := newSNSClientWithAPI(api, "arn:aws:sns:us-east-1:123:deadlines")

	alert := models.DeadlineAlert{
		ID:            "a1",
		OpportunityID: "opp-1",
		Title:         "Rural AI Grant",
		DaysRemaining: 3,
		Urgency:       "urgent",
	}

	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		var decoded models.DeadlineAlert
		if err := json.Unmarshal([]byte(awssdk.ToString(in.Message)), &decoded); err != nil {
			return false
		}
		return awssdk.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:123:deadlines" &&
			awssdk.ToString(in.MessageAttributes["urgency"].StringValue) == "urgent" &&
			awssdk.ToString(in.Subject) == "Deadline in 3 days: Rural AI Grant" &&
			decoded.OpportunityID == "opp-1"
	})).Return(&sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil)

	id, err := client.PublishDeadlineAlert(context.Background(), alert)
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestPublishDeadlineAlert_Error(t *testing.T) {
	api := new(mockSNS)
	client := newSNSClientWithAPI(api, "arn")
	api.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	_, err := client.PublishDeadlineAlert(context.Background(), models.DeadlineAlert{Title: "x"})
	assert.EqualError(t, err, "throttled")
}

func TestSubject_Truncated(t *testing.T) {
	s := subject(models.DeadlineAlert{Title: strings.Repeat("é", 200), DaysRemaining: 1})
	assert.Len(t, []rune(s), 100)
}
