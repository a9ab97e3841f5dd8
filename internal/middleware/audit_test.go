package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/biou/admin-console/internal/audit"
	"github.com/biou/admin-console/internal/models"
	"github.com/gin-gonic/gin"
)

type captureSink struct {
	entries []*models.AuditLog
}

func (s *captureSink) record(e *models.AuditLog) { s.entries = append(s.entries, e) }

func TestAudit_SuccessRecordsOneEntry(t *testing.T) {
	sink := &captureSink{}
	audit.SetRecorder(sink.record)
	defer audit.SetRecorder(nil)

	router := gin.New()
	router.POST("/api/users",
		Audit(audit.Meta{OperationType: models.OpCreate, BusinessType: models.BizUser, Module: "User"}),
		func(c *gin.Context) { c.JSON(200, gin.H{"id": 1}) },
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/users", nil)
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 5.6.7.8")
	router.ServeHTTP(w, req)

	if len(sink.entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(sink.entries))
	}
	e := sink.entries[0]
	if e.Status != models.StatusSuccess {
		t.Errorf("Status = %q, expected SUCCESS", e.Status)
	}
	if e.OperationType != models.OpCreate || e.BusinessType != models.BizUser {
		t.Errorf("metadata not carried: %+v", e)
	}
	if e.IPAddress != "1.2.3.4" {
		t.Errorf("IPAddress = %q, expected first forwarded entry", e.IPAddress)
	}
	if e.Username != "anonymous" {
		t.Errorf("Username = %q, expected anonymous", e.Username)
	}
}

func TestAudit_FailureStatusRecorded(t *testing.T) {
	sink := &captureSink{}
	audit.SetRecorder(sink.record)
	defer audit.SetRecorder(nil)

	router := gin.New()
	router.DELETE("/api/users/1",
		Audit(audit.Meta{OperationType: models.OpDelete}),
		func(c *gin.Context) { c.JSON(404, gin.H{"error": "user not found"}) },
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/users/1", nil)
	router.ServeHTTP(w, req)

	if len(sink.entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(sink.entries))
	}
	if sink.entries[0].Status != models.StatusFail {
		t.Errorf("Status = %q, expected FAIL for 404 response", sink.entries[0].Status)
	}
}

func TestAudit_RecorderPanicDoesNotBreakResponse(t *testing.T) {
	audit.SetRecorder(func(*models.AuditLog) { panic("store down") })
	defer audit.SetRecorder(nil)

	router := gin.New()
	router.GET("/api/users", Audit(audit.Meta{}), func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/users", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("response code = %d, audit failure must not affect handler", w.Code)
	}
	if !strings.Contains(w.Body.String(), "true") {
		t.Errorf("body = %q, expected handler output", w.Body.String())
	}
}

func TestAudit_ResponseCapture(t *testing.T) {
	sink := &captureSink{}
	audit.SetRecorder(sink.record)
	defer audit.SetRecorder(nil)

	router := gin.New()
	router.GET("/api/users/1",
		Audit(audit.Meta{RecordResponse: true}),
		func(c *gin.Context) { c.JSON(200, gin.H{"username": "alice"}) },
	)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/users/1", nil)
	router.ServeHTTP(w, req)

	if len(sink.entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(sink.entries))
	}
	if !strings.Contains(sink.entries[0].ResponseData, "alice") {
		t.Errorf("ResponseData = %q, expected captured body", sink.entries[0].ResponseData)
	}
}

func TestAudit_BodyCaptureMasksSensitiveFields(t *testing.T) {
	sink := &captureSink{}
	audit.SetRecorder(sink.record)
	defer audit.SetRecorder(nil)

	router := gin.New()
	router.POST("/api/auth/login",
		Audit(audit.Meta{OperationType: models.OpLogin, RecordParams: true}),
		func(c *gin.Context) { c.JSON(200, gin.H{}) },
	)

	w := httptest.NewRecorder()
	body := `{"username":"alice","password":"hunter2"}`
	req, _ := http.NewRequest("POST", "/api/auth/login", strings.NewReader(body))
	router.ServeHTTP(w, req)

	if len(sink.entries) != 1 {
		t.Fatalf("entries = %d, expected 1", len(sink.entries))
	}
	params := sink.entries[0].RequestParams
	if strings.Contains(params, "hunter2") {
		t.Errorf("RequestParams leaked password: %q", params)
	}
	if !strings.Contains(params, "alice") {
		t.Errorf("RequestParams = %q, expected masked body with username intact", params)
	}
}

func TestMaskSensitiveFields(t *testing.T) {
	in := `{"password": "secret123", "name":"bob"}`
	out := maskSensitiveFields(in)

	if strings.Contains(out, "secret123") {
		t.Errorf("password not masked: %q", out)
	}
	if !strings.Contains(out, "bob") {
		t.Errorf("unrelated field altered: %q", out)
	}
}
