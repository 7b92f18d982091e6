package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lespetitsreves/lprds/internal/config"
	"github.com/lespetitsreves/lprds/internal/db"
	"github.com/lespetitsreves/lprds/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	cfg := &config.Config{
		DBDriver:   "sqlite",
		SqlitePath: filepath.Join(t.TempDir(), "test.db"),
	}
	if err := db.Init(cfg); err != nil {
		t.Fatalf("db init: %v", err)
	}
	return Router()
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return "Bearer " + signed
}

func seedProfile(t *testing.T, role, userID string) *models.Profile {
	t.Helper()
	p := models.Profile{UserID: userID, Role: role}
	if err := db.Conn().Create(&p).Error; err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return &p
}

func doJSON(t *testing.T, r http.Handler, method, path, auth string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthz(t *testing.T) {
	r := setupRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/healthz", "", nil)
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouterRequiresToken(t *testing.T) {
	r := setupRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/children", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = doJSON(t, r, http.MethodGet, "/children", "Bearer garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: expected 401, got %d", rec.Code)
	}
}

func TestRouterRoleGates(t *testing.T) {
	r := setupRouter(t)
	seedProfile(t, models.RoleEducator, "u-educator")
	seedProfile(t, models.RoleParent, "u-parent")

	payload := map[string]any{
		"first_name": "Emma", "last_name": "Martin",
		"birth_date": "2022-03-15", "section": "moyens",
		"guardian_name": "Claire Martin", "guardian_phone": "+33611223344",
	}
	rec := doJSON(t, r, http.MethodPost, "/children", bearerFor(t, "u-educator"), payload)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("educator create child: expected 403, got %d", rec.Code)
	}
	rec = doJSON(t, r, http.MethodGet, "/children", bearerFor(t, "u-parent"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("parent list children: expected 403, got %d", rec.Code)
	}
}

func TestRouterEnrollmentToParentVisibility(t *testing.T) {
	r := setupRouter(t)
	seedProfile(t, models.RoleAdmin, "u-admin")
	parent := seedProfile(t, models.RoleParent, "u-parent")
	admin := bearerFor(t, "u-admin")

	// Enroll a child.
	rec := doJSON(t, r, http.MethodPost, "/children", admin, map[string]any{
		"first_name": "Emma", "last_name": "Martin",
		"birth_date": "2022-03-15", "section": "moyens",
		"guardian_name": "Claire Martin", "guardian_phone": "+33611223344",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var child models.Child
	if err := json.Unmarshal(rec.Body.Bytes(), &child); err != nil {
		t.Fatalf("decode child: %v", err)
	}
	if len(child.CodeQRID) != 5 {
		t.Errorf("short code not assigned: %q", child.CodeQRID)
	}

	// Link the parent.
	rec = doJSON(t, r, http.MethodPost, "/parent-children", admin, map[string]any{
		"parent_id": parent.ID, "child_id": child.ID, "relationship": "mère",
		"is_primary_contact": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create relation: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Admin writes and submits a report: staff fast path, validated at once.
	rec = doJSON(t, r, http.MethodPost, "/daily-reports", admin, map[string]any{
		"child_id": child.ID, "date": "2024-05-01",
		"health_status": "bien", "submit": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save report: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var report models.DailyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Review.Status != models.StatusValidated {
		t.Fatalf("staff submit: expected validated, got %q", report.Review.Status)
	}

	// The linked parent sees the validated report.
	rec = doJSON(t, r, http.MethodGet, "/daily-reports", bearerFor(t, "u-parent"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("parent list: expected 200, got %d", rec.Code)
	}
	var visible []models.DailyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &visible); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != report.ID {
		t.Fatalf("parent should see exactly the validated report, got %d", len(visible))
	}

	// The badge renders for the assigned short code.
	rec = doJSON(t, r, http.MethodGet, fmt.Sprintf("/qr/%s.png", child.CodeQRID), admin, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("qr badge: expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("qr badge content-type: %q", ct)
	}
}

func TestRouterWeeklyReportByIDParentGate(t *testing.T) {
	r := setupRouter(t)
	seedProfile(t, models.RoleAdmin, "u-admin")
	parent := seedProfile(t, models.RoleParent, "u-parent")
	seedProfile(t, models.RoleParent, "u-stranger")
	admin := bearerFor(t, "u-admin")

	rec := doJSON(t, r, http.MethodPost, "/children", admin, map[string]any{
		"first_name": "Emma", "last_name": "Martin",
		"birth_date": "2022-03-15", "section": "moyens",
		"guardian_name": "Claire Martin", "guardian_phone": "+33611223344",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: %d", rec.Code)
	}
	var child models.Child
	_ = json.Unmarshal(rec.Body.Bytes(), &child)

	rec = doJSON(t, r, http.MethodPost, "/parent-children", admin, map[string]any{
		"parent_id": parent.ID, "child_id": child.ID, "relationship": "mère",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create relation: %d", rec.Code)
	}

	// Draft first: the linked parent must not see it yet.
	rec = doJSON(t, r, http.MethodPost, "/weekly-reports", admin, map[string]any{
		"child_id": child.ID, "period_start": "2024-04-29",
		"highlights": "Premiers pas en motricité.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save weekly draft: %d: %s", rec.Code, rec.Body.String())
	}
	var report models.WeeklyReport
	_ = json.Unmarshal(rec.Body.Bytes(), &report)

	rec = doJSON(t, r, http.MethodGet, "/weekly-reports/"+report.ID, bearerFor(t, "u-parent"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("draft weekly report visible to parent: expected 403, got %d", rec.Code)
	}

	// Submit as staff: validated at once, and the linked parent can fetch it.
	rec = doJSON(t, r, http.MethodPost, "/weekly-reports", admin, map[string]any{
		"child_id": child.ID, "period_start": "2024-04-29",
		"highlights": "Premiers pas en motricité.", "submit": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("submit weekly: %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, r, http.MethodGet, "/weekly-reports/"+report.ID, bearerFor(t, "u-parent"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("validated weekly report: expected 200, got %d", rec.Code)
	}
	var fetched models.WeeklyReport
	if err := json.Unmarshal(rec.Body.Bytes(), &fetched); err != nil {
		t.Fatalf("decode weekly report: %v", err)
	}
	if fetched.ID != report.ID || !fetched.Review.IsValidated {
		t.Errorf("fetched wrong report: %+v", fetched.Review)
	}

	// A parent without a link stays locked out even after validation.
	rec = doJSON(t, r, http.MethodGet, "/weekly-reports/"+report.ID, bearerFor(t, "u-stranger"), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("unlinked parent: expected 403, got %d", rec.Code)
	}
}

func TestRouterScanFlow(t *testing.T) {
	r := setupRouter(t)
	seedProfile(t, models.RoleAdmin, "u-admin")
	seedProfile(t, models.RoleEducator, "u-educator")
	admin := bearerFor(t, "u-admin")
	educator := bearerFor(t, "u-educator")

	rec := doJSON(t, r, http.MethodPost, "/children", admin, map[string]any{
		"first_name": "Léo", "last_name": "Dubois",
		"birth_date": "2021-07-02", "section": "grands",
		"guardian_name": "Marc Dubois", "guardian_phone": "+33699887766",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create child: %d", rec.Code)
	}
	var child models.Child
	_ = json.Unmarshal(rec.Body.Bytes(), &child)

	rec = doJSON(t, r, http.MethodPost, "/attendance/scan", educator, map[string]any{
		"code": child.CodeQRID, "scan_type": "arrival",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var att models.DailyAttendance
	_ = json.Unmarshal(rec.Body.Bytes(), &att)
	if !att.IsPresent || att.ArrivalTime == nil {
		t.Errorf("scan did not record arrival: %+v", att)
	}

	rec = doJSON(t, r, http.MethodPost, "/attendance/scan", educator, map[string]any{
		"code": "NOPE1", "scan_type": "arrival",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown code: expected 404, got %d", rec.Code)
	}
}
