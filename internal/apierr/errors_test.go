package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/imrishuroy/go-order-triage/internal/orders"
)

func TestFrom_Mapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"already exists", orders.ErrAlreadyExists, CodeConflict, http.StatusConflict},
		{"wrapped already exists", fmt.Errorf("create: %w", orders.ErrAlreadyExists), CodeConflict, http.StatusConflict},
		{"not found", orders.ErrNotFound, CodeNotFound, http.StatusNotFound},
		{"throttling", &smithy.GenericAPIError{Code: "ProvisionedThroughputExceededException"}, CodeThrottling, http.StatusTooManyRequests},
		{"generic", errors.New("boom"), CodeInternal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := From(tc.err)
		if e.Code != tc.wantCode {
			t.Errorf("%s: code = %s, want %s", tc.name, e.Code, tc.wantCode)
		}
		if e.HTTPStatus() != tc.wantStatus {
			t.Errorf("%s: status = %d, want %d", tc.name, e.HTTPStatus(), tc.wantStatus)
		}
	}
}

func TestFrom_PassesThroughTaxonomyErrors(t *testing.T) {
	orig := Validation("bad input", map[string]string{"customerName": "is required"})
	got := From(fmt.Errorf("handler: %w", orig))
	if got != orig {
		t.Fatalf("expected the original taxonomy error back, got %+v", got)
	}
}

func TestIsThrottle(t *testing.T) {
	if !IsThrottle(&smithy.GenericAPIError{Code: "ThrottlingException"}) {
		t.Fatal("ThrottlingException must classify as throttle")
	}
	if IsThrottle(&smithy.GenericAPIError{Code: "ValidationException"}) {
		t.Fatal("ValidationException must not classify as throttle")
	}
	if IsThrottle(errors.New("plain")) {
		t.Fatal("plain error must not classify as throttle")
	}
}
