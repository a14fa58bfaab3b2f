package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindValidation:   http.StatusBadRequest,
		KindConflict:     http.StatusConflict,
		KindForbidden:    http.StatusForbidden,
		KindUnauthorized: http.StatusUnauthorized,
		KindInternal:     http.StatusInternalServerError,
		KindUnavailable:  http.StatusBadGateway,
		KindTooLarge:     http.StatusRequestEntityTooLarge,
		KindUnknown:      http.StatusBadRequest,
	}
	for kind, want := range cases {
		if got := New(kind, "x").HTTPStatus(); got != want {
			t.Fatalf("kind %d: expected %d, got %d", kind, want, got)
		}
	}
}

func TestWrapKeepsCauseInChain(t *testing.T) {
	cause := errors.New("gemini timeout")
	err := fmt.Errorf("score video: %w", Wrap(KindUnavailable, "scoring provider failed", cause))

	e, ok := As(err)
	if !ok {
		t.Fatalf("expected *Error in chain")
	}
	if e.Message != "scoring provider failed" {
		t.Fatalf("expected client message, got %q", e.Message)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause reachable through errors.Is")
	}
}

func TestAsWithoutError(t *testing.T) {
	if _, ok := As(errors.New("plain")); ok {
		t.Fatalf("expected no *Error")
	}
}
