package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/judyrop/handmade-store/models"
)

// SMS posts a text message through an Africa's Talking style gateway.
type SMS struct {
	endpoint string
	username string
	apiKey   string
	client   *http.Client
}

func NewSMS(endpoint, username, apiKey string) *SMS {
	return &SMS{
		endpoint: endpoint,
		username: username,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *SMS) OrderPlaced(ctx context.Context, order models.Order) error {
	if order.Phone == "" {
		return nil
	}
	message := fmt.Sprintf("Hi %s, your order #%d has been placed! Total %s.",
		order.FirstName, order.ID, order.TotalPrice.StringFixed(2))
	return s.send(ctx, order.Phone, message)
}

func (s *SMS) send(ctx context.Context, phone, message string) error {
	data := url.Values{}
	data.Set("username", s.username)
	data.Set("to", phone)
	data.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("apiKey", s.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send sms: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("send sms: gateway returned %d: %s", resp.StatusCode, body)
	}
	slog.DebugContext(ctx, "sms sent", slog.String("response", string(body)))
	return nil
}
