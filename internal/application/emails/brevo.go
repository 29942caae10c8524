package emails

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches the Brevo v3 transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoSender   `json:"sender"`
	To          []BrevoTo     `json:"to"`
	Subject     string        `json:"subject"`
	HTMLContent string        `json:"htmlContent"`
	ReplyTo     *BrevoReplyTo `json:"replyTo,omitempty"`
}

type BrevoSender struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type BrevoTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type BrevoReplyTo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ReservationDetails is what the reservation confirmation email shows.
type ReservationDetails struct {
	ProjectName    string
	Kw             float64
	MonthlySavings float64
	ReservationFee float64
}

// Sender sends transactional emails. Callers treat failures as best-effort.
type Sender interface {
	SendWelcome(ctx context.Context, toEmail, firstName string) error
	SendAccountUpdated(ctx context.Context, toEmail, firstName string) error
	SendWaitlistJoined(ctx context.Context, toEmail, firstName string) error
	SendReservationConfirmed(ctx context.Context, toEmail, firstName string, d ReservationDetails) error
}

// BrevoClient sends emails via the Brevo API. An empty APIKey turns every send into a no-op.
type BrevoClient struct {
	APIKey   string
	MailFrom string
	Endpoint string
	Client   *http.Client
}

func (c *BrevoClient) from() string {
	if c.MailFrom != "" {
		return c.MailFrom
	}
	return "noreply@sunshare.energy"
}

func (c *BrevoClient) endpoint() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	return brevoAPI
}

func (c *BrevoClient) send(ctx context.Context, toEmail, subject, html string) error {
	if c.APIKey == "" {
		return nil
	}
	body := BrevoSendRequest{
		Sender:      BrevoSender{Email: c.from(), Name: "SunShare"},
		To:          []BrevoTo{{Email: toEmail}},
		Subject:     subject,
		HTMLContent: html,
		ReplyTo:     &BrevoReplyTo{Email: supportEmail, Name: "SunShare Support"},
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

func greetingName(firstName string) string {
	if firstName == "" {
		return "there"
	}
	return firstName
}

func (c *BrevoClient) SendWelcome(ctx context.Context, toEmail, firstName string) error {
	return c.send(ctx, toEmail, "Welcome to SunShare!", EmailLayout(welcomeContent(greetingName(firstName))))
}

func (c *BrevoClient) SendAccountUpdated(ctx context.Context, toEmail, firstName string) error {
	return c.send(ctx, toEmail, "Your SunShare account was updated", EmailLayout(accountUpdatedContent(greetingName(firstName))))
}

// SendWaitlistJoined confirms a waitlist signup.
func (c *BrevoClient) SendWaitlistJoined(ctx context.Context, toEmail, firstName string) error {
	return c.send(ctx, toEmail, "You're on the SunShare waitlist", EmailLayout(waitlistContent(greetingName(firstName))))
}

// SendReservationConfirmed confirms a reserved capacity block with its projected savings.
func (c *BrevoClient) SendReservationConfirmed(ctx context.Context, toEmail, firstName string, d ReservationDetails) error {
	subject := fmt.Sprintf("Your %.2f kW reservation at %s", d.Kw, d.ProjectName)
	return c.send(ctx, toEmail, subject, EmailLayout(reservationContent(greetingName(firstName), d)))
}

// Nop discards every email.
type Nop struct{}

func (Nop) SendWelcome(context.Context, string, string) error        { return nil }
func (Nop) SendAccountUpdated(context.Context, string, string) error { return nil }
func (Nop) SendWaitlistJoined(context.Context, string, string) error { return nil }
func (Nop) SendReservationConfirmed(context.Context, string, string, ReservationDetails) error {
	return nil
}
