// internal/report/notifier_test.go
package report

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

type stubEmail struct {
	calls []*ses.SendEmailInput
	err   error
}

func (s *stubEmail) SendEmail(_ context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	s.calls = append(s.calls, input)
	return &ses.SendEmailOutput{}, s.err
}

type stubSMS struct {
	calls []*sns.PublishInput
	err   error
}

func (s *stubSMS) Publish(_ context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	s.calls = append(s.calls, input)
	return &sns.PublishOutput{}, s.err
}

func strongOutcome() *engine.Outcome {
	return &engine.Outcome{
		SessionID:             "s1",
		Score:                 8.5,
		Label:                 "Strong",
		Summary:               "Gathered 5/5 qualification fields.",
		RecommendedNextAction: "Schedule demo with decision-maker",
	}
}

func TestNotifier_SendsBothChannels(t *testing.T) {
	email := &stubEmail{}
	sms := &stubSMS{}
	n := NewNotifier(email, sms, NotifierConfig{
		Threshold: "Strong",
		FromEmail: "alerts@example.com",
		ToEmail:   "sales@example.com",
		TopicARN:  "arn:aws:sns:us-east-1:123:leads",
	}, logger.NewTestLogger(t))

	require.NoError(t, n.NotifyOutcome(context.Background(), strongOutcome()))

	require.Len(t, email.calls, 1)
	assert.Equal(t, "alerts@example.com", *email.calls[0].Source)
	assert.Equal(t, []string{"sales@example.com"}, email.calls[0].Destination.ToAddresses)
	assert.Contains(t, *email.calls[0].Message.Subject.Data, "Strong lead")
	assert.Contains(t, *email.calls[0].Message.Body.Text.Data, "Schedule demo")

	require.Len(t, sms.calls, 1)
	assert.Contains(t, *sms.calls[0].Message, "Schedule demo")
}

func TestNotifier_SkipsBelowThreshold(t *testing.T) {
	email := &stubEmail{}
	n := NewNotifier(email, nil, NotifierConfig{Threshold: "Strong"}, logger.NewTestLogger(t))

	out := strongOutcome()
	out.Label = "Medium"
	require.NoError(t, n.NotifyOutcome(context.Background(), out))
	assert.Empty(t, email.calls)
}

func TestNotifier_MediumThresholdIncludesStrong(t *testing.T) {
	email := &stubEmail{}
	n := NewNotifier(email, nil, NotifierConfig{Threshold: "Medium"}, logger.NewTestLogger(t))

	medium := strongOutcome()
	medium.Label = "Medium"
	require.NoError(t, n.NotifyOutcome(context.Background(), medium))
	require.NoError(t, n.NotifyOutcome(context.Background(), strongOutcome()))
	assert.Len(t, email.calls, 2)

	weak := strongOutcome()
	weak.Label = "Weak"
	require.NoError(t, n.NotifyOutcome(context.Background(), weak))
	assert.Len(t, email.calls, 2)
}

func TestNotifier_EmailFailure(t *testing.T) {
	email := &stubEmail{err: errors.New("ses throttled")}
	n := NewNotifier(email, nil, NotifierConfig{Threshold: "Strong"}, logger.NewTestLogger(t))

	err := n.NotifyOutcome(context.Background(), strongOutcome())
	require.Error(t, err)

	stdErr, ok := commonerrors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeNotificationSendFailed, stdErr.Code)
}

func TestNotifier_SMSSkippedWithoutTopic(t *testing.T) {
	sms := &stubSMS{}
	n := NewNotifier(nil, sms, NotifierConfig{Threshold: "Strong"}, logger.NewTestLogger(t))

	require.NoError(t, n.NotifyOutcome(context.Background(), strongOutcome()))
	assert.Empty(t, sms.calls)
}
