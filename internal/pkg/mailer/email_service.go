package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendLowRatingAlert(toEmail string, rating int, feedbackType, comment string) error
	SendSuggestionAlert(toEmail string, area, priority, description string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

func (s *emailService) SendLowRatingAlert(toEmail string, rating int, feedbackType, comment string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Low Rating Alert")

	if feedbackType == "" {
		feedbackType = "general"
	}
	if comment == "" {
		comment = "(no comment)"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Low Rating Received</h2>
			<p>A response was rated <strong>%d/5</strong>.</p>
			<p>Type: %s</p>
			<blockquote style="border-left: 3px solid #E53935; padding-left: 10px; color: #555;">%s</blockquote>
			<p>Review the recent low-rated responses in the metrics dashboard.</p>
		</div>
	`, rating, feedbackType, comment)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send low rating alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Low rating alert sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendSuggestionAlert(toEmail string, area, priority, description string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "High Priority Improvement Suggestion")

	if area == "" {
		area = "general"
	}
	if description == "" {
		description = "(no description)"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>New Improvement Suggestion</h2>
			<p>Area: <strong>%s</strong> (priority: %s)</p>
			<blockquote style="border-left: 3px solid #FB8C00; padding-left: 10px; color: #555;">%s</blockquote>
			<p>Review the open suggestions in the metrics dashboard.</p>
		</div>
	`, area, priority, description)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send suggestion alert to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Suggestion alert sent to %s\n", toEmail)
	return nil
}
