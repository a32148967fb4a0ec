package model

// Severity of a per-file diagnostic.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic is one message attached to a file outcome.
type Diagnostic struct {
	Severity Severity  `json:"severity"`
	Code     ErrorCode `json:"code,omitempty"`
	Message  string    `json:"message"`
}

// DiagnosticFromError converts err into an error-severity diagnostic.
func DiagnosticFromError(err error) Diagnostic {
	return Diagnostic{
		Severity: SeverityError,
		Code:     Code(err),
		Message:  err.Error(),
	}
}

// Version tags the engine; any change invalidates persisted caches.
const Version = "1.0.0"

// CacheFormatVersion is the version of the persisted cache layout.
const CacheFormatVersion = 1
