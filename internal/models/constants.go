package models

// Operation types recorded on audit logs.
const (
	OpCreate  = "CREATE"
	OpUpdate  = "UPDATE"
	OpDelete  = "DELETE"
	OpQuery   = "QUERY"
	OpLogin   = "LOGIN"
	OpLogout  = "LOGOUT"
	OpUnknown = "UNKNOWN"
)

// Business types.
const (
	BizUser       = "USER"
	BizRole       = "ROLE"
	BizPermission = "PERMISSION"
	BizSystem     = "SYSTEM"
	BizLog        = "LOG"
)

// Login types.
const (
	LoginTypeLogin    = "LOGIN"
	LoginTypeLogout   = "LOGOUT"
	LoginTypeDingTalk = "DINGTALK"
)

// Outcome status for audit and login logs.
const (
	StatusSuccess = "SUCCESS"
	StatusFail    = "FAIL"
)

// Log levels stored on system logs.
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// User account status.
const (
	UserEnabled  = 1
	UserDisabled = 0
)

// Text caps for persisted log fields. Values longer than the cap are
// truncated with a trailing "..." marker.
const (
	MaxRequestParamsLen = 1000
	MaxResponseDataLen  = 2000
	MaxMessageLen       = 1000
	MaxExceptionLen     = 2000
	MaxErrorMessageLen  = 500
)
