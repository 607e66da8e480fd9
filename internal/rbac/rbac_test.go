package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		role, perm string
		want       bool
	}{
		{"student", "exam:submit", true},
		{"student", "result:view-own", true},
		{"student", "session:manage", false},
		{"student", "result:view-all", false},
		{"admin", "session:manage", true},
		{"admin", "anything:at-all", true},
		{"", "exam:submit", false},
		{"invigilator", "exam:view", false},
	}
	for _, tc := range tests {
		if got := Allowed(tc.role, tc.perm); got != tc.want {
			t.Errorf("Allowed(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestAllowed_PrefixGrant(t *testing.T) {
	RolePermissions["proctor"] = []string{"result:*"}
	defer delete(RolePermissions, "proctor")

	if !Allowed("proctor", "result:view-all") {
		t.Fatal("prefix grant should cover result:view-all")
	}
	if Allowed("proctor", "exam:submit") {
		t.Fatal("prefix grant must not cover exam:submit")
	}
}

func TestRequire(t *testing.T) {
	h := Require("exam:submit")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest("POST", "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("student should pass, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req) // no role in context
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing role should be forbidden, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	h = Require("session:manage")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "student")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student must not manage the session, got %d", rec.Code)
	}
}
