package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"hiring_pipeline_backend/internal/hiring"
	"hiring_pipeline_backend/internal/hiring/pipeline"
	"hiring_pipeline_backend/platform/apperr"
	"hiring_pipeline_backend/platform/httpkit"
	"hiring_pipeline_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxBodyBytes caps the webhook body read before verification.
const MaxBodyBytes = 1 << 20

// BookingConfirmer advances the applicant named by a booking.
type BookingConfirmer interface {
	ConfirmBooking(ctx context.Context, b hiring.Booking) (pipeline.BookingResult, error)
}

// Escalator reports rejected deliveries to operators.
type Escalator interface {
	Report(ctx context.Context, applicantID *uuid.UUID, stage hiring.Stage, err error)
}

// Handler handles booking webhook requests.
type Handler struct {
	bookings  BookingConfirmer
	escalator Escalator
	signing   Signing
	log       *logger.Logger
}

// NewHandler creates a booking webhook handler. Deliveries must carry a
// valid signature unless signing explicitly allows unsigned ones.
func NewHandler(bookings BookingConfirmer, escalator Escalator, signing Signing, log *logger.Logger) *Handler {
	return &Handler{bookings: bookings, escalator: escalator, signing: signing, log: log}
}

// HandleBooking processes a booking notification.
// POST /api/v1/webhooks/booking
func (h *Handler) HandleBooking(c *gin.Context) {
	ctx := c.Request.Context()

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpkit.HandleError(c, apperr.New(apperr.KindTooLarge, "request body too large"))
			return
		}
		httpkit.Error(c, http.StatusBadRequest, "unable to read request body", nil)
		return
	}

	if err := h.signing.Verify(body, c.GetHeader(SignatureHeader)); err != nil {
		h.log.WebhookRejected("booking", err.Error(), c.ClientIP())
		if h.escalator != nil {
			h.escalator.Report(ctx, nil, hiring.StageBooking, err)
		}
		httpkit.HandleError(c, hiring.ToAppErr(err))
		return
	}

	booking, err := ParseBooking(body)
	if err != nil {
		h.log.WithContext(ctx).Warn("booking webhook rejected", "error", err)
		httpkit.HandleError(c, hiring.ToAppErr(err))
		return
	}

	res, err := h.bookings.ConfirmBooking(ctx, booking)
	if err != nil {
		if errors.Is(err, hiring.ErrNotFound) {
			h.log.WithContext(ctx).Warn("no zoom_invited applicant for booking")
		}
		httpkit.HandleError(c, hiring.ToAppErr(err))
		return
	}
	if res.AlreadyScheduled {
		h.log.WithContext(ctx).Info("booking webhook replayed", "applicant_id", res.Applicant.ID.String())
		httpkit.OK(c, gin.H{"status": "already_scheduled"})
		return
	}

	h.log.WithContext(ctx).Info("interview booked", "applicant_id", res.Applicant.ID.String(), "start", booking.StartRaw)
	httpkit.OK(c, gin.H{"success": true})
}
