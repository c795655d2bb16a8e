package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"typier/internal/models"
)

// ReportService sends progress report emails via Amazon SES
type ReportService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewReportService creates a new report service. With no from-address
// configured the service is disabled and every send becomes a no-op.
func NewReportService(awsRegion, fromEmail, fromName, appBaseURL string) (*ReportService, error) {
	if fromEmail == "" {
		log.Println("Report emails disabled: SES_FROM_EMAIL not configured")
		return &ReportService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	log.Printf("Report emails enabled: from=%s, region=%s", fromEmail, awsRegion)
	return &ReportService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the report service is enabled
func (s *ReportService) IsEnabled() bool {
	return s.enabled
}

// SendWelcomeEmail greets a newly registered user
func (s *ReportService) SendWelcomeEmail(ctx context.Context, toEmail, toName string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): welcome to %s", toEmail)
		return nil
	}

	subject := "Welcome to Typier!"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d7d6f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.button { display: inline-block; padding: 12px 30px; background-color: #2d7d6f; color: white; text-decoration: none; border-radius: 5px; margin: 20px 0; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Welcome to Typier!</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Your account is ready. Here's how to get the most out of your practice:</p>
			<ul>
				<li>Run a timed session every day, even a short one</li>
				<li>Watch your accuracy before chasing speed</li>
				<li>Check your stats page for the characters you mistype most</li>
			</ul>
			<p style="text-align: center;">
				<a href="%s" class="button">Start Typing</a>
			</p>
		</div>
		<div class="footer">
			<p>This is an automated email from Typier. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Your account is ready. Here's how to get the most out of your practice:
- Run a timed session every day, even a short one
- Watch your accuracy before chasing speed
- Check your stats page for the characters you mistype most

Start typing: %s

---
This is an automated email from Typier. Please do not reply.
`, toName, s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// SendProgressReport emails a user their recent aggregates and advice
func (s *ReportService) SendProgressReport(ctx context.Context, toEmail, toName string, summary *models.StatsSummary, recs []models.Recommendation) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): progress report to %s", toEmail)
		return nil
	}
	if summary == nil || summary.Sessions == 0 {
		log.Printf("Skipping progress report to %s: no completed sessions", toEmail)
		return nil
	}

	trend := "holding steady"
	if summary.TrendSlope > 0.1 {
		trend = "improving"
	} else if summary.TrendSlope < -0.1 {
		trend = "slipping"
	}

	var adviceHTML, adviceText strings.Builder
	for _, rec := range recs {
		fmt.Fprintf(&adviceHTML, "<li>%s</li>\n", rec.Message)
		fmt.Fprintf(&adviceText, "- %s\n", rec.Message)
	}

	subject := "Your Typier Progress Report"
	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #2d7d6f; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.stat { font-size: 24px; font-weight: bold; color: #2d7d6f; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>Your Progress Report</h1>
		</div>
		<div class="content">
			<p>Hi %s,</p>
			<p>Over your last %d sessions:</p>
			<ul>
				<li>Average speed: <span class="stat">%.0f WPM</span> (%s)</li>
				<li>Personal best: <span class="stat">%d WPM</span></li>
				<li>Average accuracy: <span class="stat">%.1f%%</span></li>
			</ul>
			<p>What to work on:</p>
			<ul>
%s			</ul>
			<p><a href="%s/stats">See your full stats</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Typier. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`, toName, summary.Sessions, summary.AvgNetWPM, trend, summary.BestNetWPM, summary.AvgAccuracy, adviceHTML.String(), s.appBaseURL)

	textBody := fmt.Sprintf(`Hi %s,

Over your last %d sessions:
- Average speed: %.0f WPM (%s)
- Personal best: %d WPM
- Average accuracy: %.1f%%

What to work on:
%s
See your full stats: %s/stats

---
This is an automated email from Typier. Please do not reply.
`, toName, summary.Sessions, summary.AvgNetWPM, trend, summary.BestNetWPM, summary.AvgAccuracy, adviceText.String(), s.appBaseURL)

	return s.sendEmail(ctx, toEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *ReportService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
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

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent: to=%s, subject=%s", toEmail, subject)
	return nil
}
