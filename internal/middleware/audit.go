package middleware

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/biou/admin-console/internal/audit"
	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/utils"
	"github.com/gin-gonic/gin"
)

// Audit records one audit log entry per invocation of the wrapped route,
// success or failure. Attach per-route with operation metadata; blank
// Meta fields are inferred from the handler name. Audit capture failure
// never changes the handler's response.
func Audit(meta audit.Meta) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		var bodySnippet string
		if meta.RecordParams && c.Request.Body != nil {
			bodyBytes, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
			bodySnippet = maskSensitiveFields(string(bodyBytes))
		}

		var respBuf *bytes.Buffer
		if meta.RecordResponse {
			respBuf = &bytes.Buffer{}
			c.Writer = &responseRecorder{ResponseWriter: c.Writer, body: respBuf}
		}

		c.Next()

		// After handler — record, shielded from its own failures.
		func() {
			defer func() { recover() }()

			resolved := meta.Resolve(c.HandlerName())
			entry := buildEntry(c, resolved, start)

			if bodySnippet != "" {
				params := bodySnippet
				if query := c.Request.URL.RawQuery; query != "" {
					params = query + " " + params
				}
				entry.RequestParams = utils.Truncate(params, models.MaxRequestParamsLen)
			} else if meta.RecordParams {
				entry.RequestParams = utils.Truncate(c.Request.URL.RawQuery, models.MaxRequestParamsLen)
			}

			if respBuf != nil {
				entry.ResponseData = utils.Truncate(respBuf.String(), models.MaxResponseDataLen)
			}

			audit.Record(entry)
		}()
	}
}

func buildEntry(c *gin.Context, meta audit.Meta, start time.Time) *models.AuditLog {
	entry := &models.AuditLog{
		Username:      "anonymous",
		OperationType: meta.OperationType,
		BusinessType:  meta.BusinessType,
		Module:        meta.Module,
		Description:   meta.Description,
		HTTPMethod:    c.Request.Method,
		RequestURL:    c.Request.URL.Path,
		IPAddress:     utils.ClientIP(c.Request),
		UserAgent:     utils.UserAgent(c.Request),
		Status:        models.StatusSuccess,
		ExecutionTime: time.Since(start).Milliseconds(),
		CreatedAt:     time.Now(),
	}

	if uid := GetUserID(c); uid > 0 {
		entry.UserID = &uid
	}
	if name := GetUsername(c); name != "" {
		entry.Username = name
	}

	if c.Writer.Status() >= 400 || len(c.Errors) > 0 {
		entry.Status = models.StatusFail
		if len(c.Errors) > 0 {
			entry.ErrorMessage = utils.Truncate(c.Errors.String(), models.MaxErrorMessageLen)
		}
	}

	return entry
}

// responseRecorder duplicates the response body for audit capture.
type responseRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}

// maskSensitiveFields replaces sensitive values in JSON body
func maskSensitiveFields(body string) string {
	sensitiveKeys := []string{"password", "api_key", "apiKey", "secret", "token", "access_token", "refresh_token"}
	lower := strings.ToLower(body)
	for _, key := range sensitiveKeys {
		if strings.Contains(lower, key) {
			body = maskJSONValue(body, key)
		}
	}
	return body
}

// maskJSONValue does a best-effort mask of JSON string values for a given key
func maskJSONValue(body, key string) string {
	lower := strings.ToLower(body)
	idx := strings.Index(lower, "\""+key+"\"")
	if idx == -1 {
		return body
	}

	// Find the colon after the key
	colonIdx := strings.Index(body[idx+len(key)+2:], ":")
	if colonIdx == -1 {
		return body
	}
	valueStart := idx + len(key) + 2 + colonIdx + 1

	// Skip whitespace
	for valueStart < len(body) && (body[valueStart] == ' ' || body[valueStart] == '\t') {
		valueStart++
	}

	if valueStart >= len(body) {
		return body
	}

	// If it's a quoted string, mask it
	if body[valueStart] == '"' {
		endQuote := strings.Index(body[valueStart+1:], "\"")
		if endQuote == -1 {
			return body
		}
		return body[:valueStart+1] + "***" + body[valueStart+1+endQuote:]
	}

	return body
}
