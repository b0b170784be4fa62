package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"classconnect/internal/apperr"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind apperr.Kind
		want int
	}{
		{apperr.Unauthenticated, http.StatusUnauthorized},
		{apperr.PendingApproval, http.StatusForbidden},
		{apperr.Forbidden, http.StatusForbidden},
		{apperr.NotFound, http.StatusNotFound},
		{apperr.Conflict, http.StatusConflict},
		{apperr.Validation, http.StatusBadRequest},
		{apperr.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := apperr.HTTPStatus(apperr.New(tt.kind, "x")); got != tt.want {
			t.Errorf("kind %d: expected %d, got %d", tt.kind, tt.want, got)
		}
	}
}

func TestUnclassifiedCollapsesToInternal(t *testing.T) {
	err := errors.New("pg: connection refused")
	if apperr.KindOf(err) != apperr.Internal {
		t.Error("expected Internal kind")
	}
	if apperr.HTTPStatus(err) != http.StatusInternalServerError {
		t.Error("expected 500")
	}
	if apperr.Message(err) != "Internal Server Error" {
		t.Errorf("internal detail leaked: %q", apperr.Message(err))
	}
}

func TestWrappedKindSurvives(t *testing.T) {
	inner := apperr.New(apperr.Conflict, "This time slot is already booked.")
	wrapped := fmt.Errorf("create appointment: %w", inner)

	if apperr.KindOf(wrapped) != apperr.Conflict {
		t.Error("kind lost through wrapping")
	}
	if apperr.Message(wrapped) != "This time slot is already booked." {
		t.Errorf("message lost: %q", apperr.Message(wrapped))
	}
}
