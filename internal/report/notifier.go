// internal/report/notifier.go
package report

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	commonerrors "coldcall-backend/internal/common/errors"
	"coldcall-backend/internal/common/logger"
	"coldcall-backend/internal/engine"
)

// EmailSender is the slice of the SES client the notifier needs.
type EmailSender interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}

// SMSPublisher is the slice of the SNS client the notifier needs.
type SMSPublisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// NotifierConfig controls who gets told about qualified leads.
type NotifierConfig struct {
	Threshold string // minimum label: "Weak", "Medium" or "Strong"
	FromEmail string
	ToEmail   string
	TopicARN  string
}

// Notifier alerts the sales team when a call ends at or above the
// configured label threshold. Either channel may be nil.
type Notifier struct {
	email  EmailSender
	sms    SMSPublisher
	config NotifierConfig
	logger logger.Logger
}

func NewNotifier(email EmailSender, sms SMSPublisher, config NotifierConfig, log logger.Logger) *Notifier {
	if config.Threshold == "" {
		config.Threshold = "Strong"
	}
	return &Notifier{
		email:  email,
		sms:    sms,
		config: config,
		logger: log.WithFields(map[string]interface{}{
			"component": "lead-notifier",
		}),
	}
}

var labelRank = map[string]int{"Weak": 0, "Medium": 1, "Strong": 2}

// NotifyOutcome sends the lead alert if the label clears the threshold.
// Below-threshold outcomes are skipped silently.
func (n *Notifier) NotifyOutcome(ctx context.Context, outcome *engine.Outcome) error {
	if labelRank[outcome.Label] < labelRank[n.config.Threshold] {
		return nil
	}

	subject := fmt.Sprintf("[%s lead] Call %s scored %.1f/10", outcome.Label, outcome.SessionID, outcome.Score)
	body := fmt.Sprintf("%s\n\nNext action: %s", outcome.Summary, outcome.RecommendedNextAction)

	if n.email != nil {
		_, err := n.email.SendEmail(ctx, &ses.SendEmailInput{
			Source: awssdk.String(n.config.FromEmail),
			Destination: &sestypes.Destination{
				ToAddresses: []string{n.config.ToEmail},
			},
			Message: &sestypes.Message{
				Subject: &sestypes.Content{Data: awssdk.String(subject)},
				Body: &sestypes.Body{
					Text: &sestypes.Content{Data: awssdk.String(body)},
				},
			},
		})
		if err != nil {
			n.logger.Error("lead email failed", map[string]interface{}{
				"sessionId": outcome.SessionID,
				"error":     err.Error(),
			})
			return commonerrors.NewNotificationSendFailedError("email", err)
		}
	}

	if n.sms != nil && n.config.TopicARN != "" {
		_, err := n.sms.Publish(ctx, &sns.PublishInput{
			TopicArn: awssdk.String(n.config.TopicARN),
			Subject:  awssdk.String(subject),
			Message:  awssdk.String(body),
		})
		if err != nil {
			n.logger.Error("lead sms failed", map[string]interface{}{
				"sessionId": outcome.SessionID,
				"error":     err.Error(),
			})
			return commonerrors.NewNotificationSendFailedError("sms", err)
		}
	}

	n.logger.Info("lead notification sent", map[string]interface{}{
		"sessionId": outcome.SessionID,
		"label":     outcome.Label,
		"score":     outcome.Score,
	})
	return nil
}
