package notifier

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"

	"github.com/Keoroanthony/go-food-delivery/configs"
)

type sesAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// EmailSender delivers messages through AWS SES.
type EmailSender struct {
	client sesAPI
	sender string
}

func NewEmailSender(ctx context.Context, cfg config.EmailConfig) (*EmailSender, error) {
	if cfg.SenderEmail == "" {
		return nil, fmt.Errorf("sender email address is not configured in environment variables")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	return &EmailSender{client: ses.NewFromConfig(awsCfg), sender: cfg.SenderEmail}, nil
}

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if msg.Email == "" {
		return fmt.Errorf("recipient email address is empty")
	}
	if _, err := s.client.SendEmail(ctx, s.buildInput(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (s *EmailSender) buildInput(msg Message) *ses.SendEmailInput {
	bodyHTML := fmt.Sprintf(`
        <html>
        <body>
            <p>Dear %s,</p>
            <p>%s</p>
            <p><strong>Order Details:</strong></p>
            <ul>
                <li>Order ID: %s</li>
                <li>Total Amount: %s</li>
            </ul>
            <p>Best regards,</p>
            <p>Your Food Delivery Team</p>
        </body>
        </html>`, html.EscapeString(msg.CustomerName), html.EscapeString(msg.Text), msg.OrderID, msg.Total)

	bodyText := fmt.Sprintf(
		"Dear %s,\n\n%s\n\nOrder Details:\nOrder ID: %s\nTotal Amount: %s\n\nBest regards,\nYour Food Delivery Team",
		msg.CustomerName, msg.Text, msg.OrderID, msg.Total)

	return &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{msg.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Charset: aws.String("UTF-8"),
				Data:    aws.String(msg.Subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyHTML),
				},
				Text: &types.Content{
					Charset: aws.String("UTF-8"),
					Data:    aws.String(bodyText),
				},
			},
		},
	}
}
