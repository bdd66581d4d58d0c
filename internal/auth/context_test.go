package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestEnforceOrganizationScope(t *testing.T) {
	orgID := uuid.New()

	if err := EnforceOrganizationScope(context.Background(), uuid.Nil); !errors.Is(err, ErrOrganizationRequired) {
		t.Fatalf("expected ErrOrganizationRequired, got %v", err)
	}
	if err := EnforceOrganizationScope(context.Background(), orgID); err != nil {
		t.Fatalf("unscoped context should allow any organization: %v", err)
	}

	ctx := ContextWithOrganizationID(context.Background(), orgID)
	if err := EnforceOrganizationScope(ctx, orgID); err != nil {
		t.Fatalf("matching scope rejected: %v", err)
	}
	if err := EnforceOrganizationScope(ctx, uuid.New()); !errors.Is(err, ErrScopeMismatch) {
		t.Fatalf("expected ErrScopeMismatch, got %v", err)
	}
}

func TestHeaderMiddleware(t *testing.T) {
	orgID := uuid.New()
	var seen uuid.UUID
	var scoped bool
	handler := HeaderMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, scoped = OrganizationIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/ingestions", nil)
	req.Header.Set(HeaderOrganizationID, orgID.String())
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if !scoped || seen != orgID {
		t.Fatalf("expected scope %s, got %s (scoped=%v)", orgID, seen, scoped)
	}

	req = httptest.NewRequest(http.MethodGet, "/ingestions", nil)
	req.Header.Set(HeaderOrganizationID, "not-a-uuid")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed header, got %d", rec.Code)
	}
}
