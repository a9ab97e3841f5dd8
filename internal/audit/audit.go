// Package audit captures business operations into audit log records
// without altering the outcome of the wrapped operation.
package audit

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/biou/admin-console/internal/models"
	"github.com/biou/admin-console/internal/utils"
	"github.com/gin-gonic/gin"
)

// Meta describes the operation being audited. Blank fields are inferred
// from the handler: operation type from the name prefix, module from the
// receiver type, description from the operation name.
type Meta struct {
	OperationType  string
	BusinessType   string
	Module         string
	Description    string
	RecordParams   bool
	RecordResponse bool
}

// Context keys shared with the auth middleware.
const (
	ContextUserID   = "user_id"
	ContextUsername = "username"
)

var (
	recorderMu sync.RWMutex
	recorder   func(*models.AuditLog)
)

// SetRecorder wires the audit sink. Set once at startup, after the log
// store is ready.
func SetRecorder(f func(*models.AuditLog)) {
	recorderMu.Lock()
	recorder = f
	recorderMu.Unlock()
}

// Record hands a finished audit entry to the sink. A missing sink or a
// sink failure is absorbed; audit capture never disturbs the caller.
func Record(entry *models.AuditLog) {
	recorderMu.RLock()
	f := recorder
	recorderMu.RUnlock()
	if f == nil {
		return
	}
	defer func() { recover() }()
	f(entry)
}

// Do wraps op and records one audit entry regardless of outcome. The
// result and error of op are returned unchanged. When no request
// context is available the operation runs without audit capture.
func Do(c *gin.Context, meta Meta, op func() (interface{}, error)) (interface{}, error) {
	if c == nil || c.Request == nil {
		return op()
	}

	meta = meta.Resolve(c.HandlerName())
	start := time.Now()

	result, err := op()

	func() {
		defer func() { recover() }()

		entry := newEntry(c, meta, start)
		if err != nil {
			entry.Status = models.StatusFail
			entry.ErrorMessage = utils.Truncate(err.Error(), models.MaxErrorMessageLen)
		}
		if meta.RecordResponse && err == nil && result != nil {
			if data, jerr := json.Marshal(result); jerr == nil {
				entry.ResponseData = utils.Truncate(string(data), models.MaxResponseDataLen)
			}
		}
		Record(entry)
	}()

	return result, err
}

func newEntry(c *gin.Context, meta Meta, start time.Time) *models.AuditLog {
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

	if id, exists := c.Get(ContextUserID); exists {
		if uid, ok := id.(uint); ok && uid > 0 {
			entry.UserID = &uid
		}
	}
	if name, exists := c.Get(ContextUsername); exists {
		if username, ok := name.(string); ok && username != "" {
			entry.Username = username
		}
	}

	if meta.RecordParams {
		if query := c.Request.URL.RawQuery; query != "" {
			entry.RequestParams = utils.Truncate(query, models.MaxRequestParamsLen)
		}
	}

	return entry
}

// Resolve fills blank Meta fields from the Gin handler name, e.g.
// ".../handlers.(*UserHandler).CreateUser-fm".
func (m Meta) Resolve(handlerName string) Meta {
	opName := operationName(handlerName)

	if m.OperationType == "" {
		m.OperationType = InferOperationType(opName)
	}
	if m.Module == "" {
		m.Module = moduleName(handlerName)
	}
	if m.Description == "" {
		m.Description = opName
	}
	return m
}

// InferOperationType maps an operation name to its operation type by
// case-insensitive prefix.
func InferOperationType(name string) string {
	lower := strings.ToLower(name)
	switch {
	case hasAnyPrefix(lower, "create", "add", "insert", "save"):
		return models.OpCreate
	case hasAnyPrefix(lower, "update", "modify", "edit"):
		return models.OpUpdate
	case hasAnyPrefix(lower, "delete", "remove"):
		return models.OpDelete
	case hasAnyPrefix(lower, "get", "find", "list", "page", "query", "search"):
		return models.OpQuery
	default:
		return models.OpUnknown
	}
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// operationName extracts the method name from a fully qualified Gin
// handler name.
func operationName(handlerName string) string {
	name := strings.TrimSuffix(handlerName, "-fm")
	if idx := strings.LastIndex(name, "."); idx != -1 {
		name = name[idx+1:]
	}
	return name
}

// moduleName extracts the receiver type, e.g. "UserHandler" from
// "handlers.(*UserHandler).CreateUser-fm".
func moduleName(handlerName string) string {
	start := strings.Index(handlerName, "(*")
	if start == -1 {
		return operationName(handlerName)
	}
	end := strings.Index(handlerName[start:], ")")
	if end == -1 {
		return operationName(handlerName)
	}
	return handlerName[start+2 : start+end]
}
