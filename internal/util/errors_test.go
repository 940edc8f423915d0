package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validationf("bad input"), want: http.StatusBadRequest},
		{name: "authorization", err: Authorizationf("not yours"), want: http.StatusForbidden},
		{name: "state conflict", err: StateConflictf("already submitted"), want: http.StatusConflict},
		{name: "data integrity", err: DataIntegrityf(errors.New("dup"), "constraint"), want: http.StatusUnprocessableEntity},
		{name: "downstream", err: Downstreamf(errors.New("timeout"), "storage"), want: http.StatusInternalServerError},
		{name: "not found sentinel", err: ErrExamNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading: %w", ErrAttemptNotFound), want: http.StatusNotFound},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := HTTPStatus(tc.err); got != tc.want {
				t.Errorf("HTTPStatus(%v) = %d, want %d", tc.err, got, tc.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if got := KindOf(StateConflictf("x")); got != FaultStateConflict {
		t.Errorf("KindOf = %v, want FaultStateConflict", got)
	}
	wrapped := fmt.Errorf("outer: %w", Validationf("inner"))
	if got := KindOf(wrapped); got != FaultValidation {
		t.Errorf("wrapped KindOf = %v, want FaultValidation", got)
	}
	if got := KindOf(errors.New("plain")); got != FaultUnknown {
		t.Errorf("plain KindOf = %v, want FaultUnknown", got)
	}
}
