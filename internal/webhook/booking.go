// Package webhook receives signed booking notifications from the scheduling
// service and advances invited applicants to zoom_scheduled.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hiring_pipeline_backend/internal/hiring"
)

// SignatureHeader carries hex(HMAC-SHA256(secret, body)).
const SignatureHeader = "X-Cal-Signature-256"

// Sign returns the signature a sender computes for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Signing configures how deliveries are authenticated. AllowUnsigned only
// takes effect when no Secret is set, and config refuses it in production.
type Signing struct {
	Secret        string
	AllowUnsigned bool
}

// Verify checks presented against body, or skips the check for a dev setup
// that explicitly allows unsigned deliveries.
func (s Signing) Verify(body []byte, presented string) error {
	if s.Secret == "" && s.AllowUnsigned {
		return nil
	}
	return VerifySignature(s.Secret, body, presented)
}

// VerifySignature compares the presented signature with the expected one in
// constant time. Without a secret nothing can be verified, so every
// delivery fails.
func VerifySignature(secret string, body []byte, presented string) error {
	if secret == "" {
		return fmt.Errorf("%w: no signing secret configured", hiring.ErrWebhookAuth)
	}
	presented = strings.TrimPrefix(strings.TrimSpace(presented), "sha256=")
	if presented == "" {
		return fmt.Errorf("%w: missing signature", hiring.ErrWebhookAuth)
	}
	got, err := hex.DecodeString(presented)
	if err != nil {
		return fmt.Errorf("%w: malformed signature", hiring.ErrWebhookAuth)
	}
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return hiring.ErrWebhookAuth
	}
	return nil
}

type attendee struct {
	Email string `json:"email"`
}

type bookingMetadata struct {
	VideoCallURL string `json:"videoCallUrl"`
}

type bookingBody struct {
	StartTime string          `json:"startTime"`
	Attendees []attendee      `json:"attendees"`
	Metadata  bookingMetadata `json:"metadata"`
}

type bookingEnvelope struct {
	Payload *bookingBody `json:"payload"`
	bookingBody
}

// ParseBooking extracts the attendee email, start time and meeting URL. The
// nested payload wins over top-level fields.
func ParseBooking(body []byte) (hiring.Booking, error) {
	var env bookingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return hiring.Booking{}, hiring.Invalid("body", "is not valid JSON")
	}

	var b hiring.Booking
	if env.Payload != nil {
		b.Email = firstEmail(env.Payload.Attendees)
		b.StartRaw = strings.TrimSpace(env.Payload.StartTime)
		b.MeetingURL = strings.TrimSpace(env.Payload.Metadata.VideoCallURL)
	}
	if b.Email == "" {
		b.Email = firstEmail(env.Attendees)
	}
	if b.StartRaw == "" {
		b.StartRaw = strings.TrimSpace(env.StartTime)
	}
	if b.MeetingURL == "" {
		b.MeetingURL = strings.TrimSpace(env.Metadata.VideoCallURL)
	}

	b.Email = hiring.NormalizeEmail(b.Email)
	if b.Email == "" {
		return hiring.Booking{}, hiring.Invalid("attendees[0].email", "is required")
	}
	if b.StartRaw == "" {
		b.StartRaw = "TBD"
	} else if t, err := time.Parse(time.RFC3339, b.StartRaw); err == nil {
		t = t.UTC()
		b.StartTime = &t
	}
	return b, nil
}

func firstEmail(list []attendee) string {
	if len(list) == 0 {
		return ""
	}
	return strings.TrimSpace(list[0].Email)
}
