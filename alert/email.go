// api/alert/email.go
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"oamour/api/metrics"
)

const (
	resendEndpoint   = "https://api.resend.com/emails"
	defaultToEmail   = "chibuikemichaelilonze@gmail.com"
	defaultFromEmail = "onboarding@resend.dev"
)

// VisitorLoad carries the fields surfaced in the "website load" email.
type VisitorLoad struct {
	OccurredAt  string
	IP          *string
	DeviceType  *string
	OS          *string
	Browser     *string
	Path        *string
	URL         *string
	VisitorName *string
}

// Mailer sends visitor-load alerts through the Resend REST API. A zero
// API key disables sending entirely.
type Mailer struct {
	APIKey     string
	To         string
	From       string
	HTTPClient *http.Client
	Endpoint   string
}

// NewMailerFromEnv builds a Mailer from RESEND_API_KEY, ALERT_EMAIL_TO and
// ALERT_EMAIL_FROM.
func NewMailerFromEnv() *Mailer {
	to := strings.TrimSpace(os.Getenv("ALERT_EMAIL_TO"))
	if to == "" {
		to = defaultToEmail
	}
	from := strings.TrimSpace(os.Getenv("ALERT_EMAIL_FROM"))
	if from == "" {
		from = defaultFromEmail
	}
	return &Mailer{
		APIKey:     strings.TrimSpace(os.Getenv("RESEND_API_KEY")),
		To:         to,
		From:       from,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Endpoint:   resendEndpoint,
	}
}

// SendVisitorLoad emails a one-shot alert about a fresh non-bot session.
// Best effort only: ingestion never waits on it and never sees its errors.
func (m *Mailer) SendVisitorLoad(ctx context.Context, load VisitorLoad) error {
	if m == nil || m.APIKey == "" {
		return nil
	}

	html := fmt.Sprintf(`
    <div style="font-family:Arial,sans-serif;line-height:1.5">
      <h2>New website load</h2>
      <p><strong>Time:</strong> %s</p>
      <p><strong>Name:</strong> %s</p>
      <p><strong>IP:</strong> %s</p>
      <p><strong>Device:</strong> %s / %s / %s</p>
      <p><strong>Path:</strong> %s</p>
      <p><strong>URL:</strong> %s</p>
    </div>`,
		load.OccurredAt,
		orDash(load.VisitorName),
		orDash(load.IP),
		orDash(load.DeviceType),
		orDash(load.OS),
		orDash(load.Browser),
		orDash(load.Path),
		orDash(load.URL),
	)

	body, err := json.Marshal(map[string]any{
		"from":    m.From,
		"to":      []string{m.To},
		"subject": "Website load detected",
		"html":    strings.TrimSpace(html),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal alert email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build alert request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("alert email request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("alert email returned status %d", resp.StatusCode)
	}
	metrics.AlertEmailsSent.Inc()
	return nil
}

// DispatchVisitorLoad fires SendVisitorLoad on its own goroutine with a
// fresh context so the ingest response never blocks on mail delivery.
func (m *Mailer) DispatchVisitorLoad(load VisitorLoad) {
	if m == nil || m.APIKey == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := m.SendVisitorLoad(ctx, load); err != nil {
			log.Printf("Visitor load email failed (ignored): %v", err)
		}
	}()
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
