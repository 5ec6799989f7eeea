package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends transactional email via Amazon SES. When no from
// address is configured the service runs disabled and every send is a
// logged no-op, so the rest of the app never has to check.
type EmailService struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	enabled   bool
	debug     bool
}

// NewEmailService creates the service, disabled if fromEmail is empty.
func NewEmailService(awsRegion, fromEmail, fromName string, debug bool) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, debug: debug}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &EmailService{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		enabled:   true,
		debug:     debug,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered parent.
func (s *EmailService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to QuestBuddy!"
	textBody := fmt.Sprintf(`Hi %s,

Thank you for creating your QuestBuddy account! Set up quests and rewards for your children and watch them level up.

Here's what you can do next:
- Add children to your family account
- Create quests worth XP and points
- Add rewards for children to spend their points on

---
This is an automated email from QuestBuddy. Please do not reply.
`, toName)
	htmlBody := fmt.Sprintf(`<html><body>
<p>Hi %s,</p>
<p>Thank you for creating your QuestBuddy account! Set up quests and rewards for your children and watch them level up.</p>
<ul>
<li>Add children to your family account</li>
<li>Create quests worth XP and points</li>
<li>Add rewards for children to spend their points on</li>
</ul>
<p>This is an automated email from QuestBuddy. Please do not reply.</p>
</body></html>`, toName)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendActivityEmail forwards an activity notification to the parent.
func (s *EmailService) SendActivityEmail(ctx context.Context, toEmail, title, message string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): %s to %s", title, toEmail)
		return nil
	}

	htmlBody := fmt.Sprintf(`<html><body><p><strong>%s</strong></p><p>%s</p>
<p>This is an automated email from QuestBuddy. Please do not reply.</p></body></html>`, title, message)
	textBody := fmt.Sprintf("%s\n\n%s\n\n---\nThis is an automated email from QuestBuddy. Please do not reply.\n", title, message)

	return s.sendEmail(ctx, toEmail, title, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	if s.debug {
		log.Printf("[DEBUG] Sending email: from=%s, to=%s, subject=%s", fromAddress, toEmail, subject)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}
	if s.debug && result.MessageId != nil {
		log.Printf("[DEBUG] SES message ID: %s", *result.MessageId)
	}

	log.Printf("Email sent successfully: to=%s, subject=%s", toEmail, subject)
	return nil
}
