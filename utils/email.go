// utils/email.go
package utils

import (
	"fmt"

	"github.com/keighl/postmark"

	"go-marketplace/models"
)

// EmailService handles sending emails using Postmark. A service constructed
// without an API token drops all sends, so mail stays optional in local runs.
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return &EmailService{}
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// Enabled reports whether the service has a configured Postmark client.
func (es *EmailService) Enabled() bool {
	return es.client != nil
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	if es.client == nil {
		return nil
	}
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendOrderConfirmationEmail sends an order confirmation email to the user
func (es *EmailService) SendOrderConfirmationEmail(toEmail, name string, order models.Order) error {
	subject := "Order Confirmation"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Thank you for your purchase! Your order (ID: %s) has been placed successfully.<br><br>Total Amount: <strong>$%.2f</strong><br>Payment Method: <strong>%s</strong><br><br>Thank you for shopping with us!",
		name,
		order.ID.Hex(),
		order.TotalAmount,
		order.PaymentMethod,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendOrderStatusEmail notifies the user that an order changed status.
func (es *EmailService) SendOrderStatusEmail(toEmail string, order models.Order) error {
	subject := "Order Status Updated"
	htmlContent := fmt.Sprintf(
		"<strong>Your order (ID: %s) is now '%s'.</strong><br><br>Thank you for shopping with us!",
		order.ID.Hex(),
		order.Status,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
