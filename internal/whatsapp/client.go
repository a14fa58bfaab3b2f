// Package whatsapp sends candidate nudges through a GOWA
// (go-whatsapp-web-multidevice) gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"
	"hiring_pipeline_backend/platform/phone"
)

// Client posts to the gateway's REST API. A nil *Client is disabled and
// every send is a no-op.
type Client struct {
	baseURL string
	headers http.Header
	http    *http.Client
	log     *logger.Logger
}

type gowaRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// NewClient returns nil when WHATSAPP_URL is unset.
func NewClient(cfg config.WhatsAppConfig, log *logger.Logger) *Client {
	base := strings.TrimRight(cfg.GetWhatsAppURL(), "/")
	if base == "" {
		return nil
	}
	headers := http.Header{}
	if key := cfg.GetWhatsAppKey(); key != "" {
		headers.Set("Authorization", basicAuth(key))
	}
	if device := cfg.GetWhatsAppDeviceID(); device != "" {
		headers.Set("X-Device-Id", device)
	}
	return &Client{
		baseURL: base,
		headers: headers,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     log,
	}
}

func (c *Client) Enabled() bool { return c != nil }

func (c *Client) SendMessage(ctx context.Context, phoneNumber, message string) error {
	if c == nil {
		return nil
	}
	to, err := gatewayNumber(phoneNumber)
	if err != nil {
		return err
	}
	body, err := json.Marshal(gowaRequest{Phone: to, Message: message})
	if err != nil {
		return fmt.Errorf("whatsapp: encode message: %w", err)
	}
	return c.send(ctx, to, "/send/message", "application/json", body)
}

// SendImage uploads image as multipart form data with caption.
func (c *Client) SendImage(ctx context.Context, phoneNumber, caption, fileName string, image []byte) error {
	if c == nil {
		return nil
	}
	to, err := gatewayNumber(phoneNumber)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := writeImageForm(form, to, caption, fileName, image); err != nil {
		return fmt.Errorf("whatsapp: build image form: %w", err)
	}
	return c.send(ctx, to, "/send/image", form.FormDataContentType(), buf.Bytes())
}

func writeImageForm(form *multipart.Writer, to, caption, fileName string, image []byte) error {
	if err := form.WriteField("phone", to); err != nil {
		return err
	}
	if err := form.WriteField("caption", caption); err != nil {
		return err
	}
	part, err := form.CreateFormFile("image", fileName)
	if err != nil {
		return err
	}
	if _, err := part.Write(image); err != nil {
		return err
	}
	return form.Close()
}

func (c *Client) send(ctx context.Context, to, path, contentType string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header = c.headers.Clone()
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("whatsapp: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp: gateway returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	c.log.WithContext(ctx).Info("whatsapp sent", "path", path, "phone", masked(to))
	return nil
}

// gatewayNumber formats raw as the digits-only international number GOWA
// addresses chats by.
func gatewayNumber(raw string) (string, error) {
	e164 := phone.NormalizeE164(raw)
	if !strings.HasPrefix(e164, "+") {
		return "", fmt.Errorf("whatsapp: %q is not a dialable number", raw)
	}
	return phone.Digits(e164), nil
}

func masked(digits string) string {
	if len(digits) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

// basicAuth accepts either "user:pass" or a ready "Basic ..." header value.
func basicAuth(key string) string {
	if strings.HasPrefix(strings.ToLower(key), "basic ") {
		return key
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key))
}
