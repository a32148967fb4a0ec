package model

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmatic checking.
var (
	ErrUnparsableSource = errors.New("source cannot be tokenized")
	ErrUnknownRule      = errors.New("unknown rule")
	ErrUnknownRuleSet   = errors.New("unknown rule set")
	ErrInvalidName      = errors.New("invalid rule set name")
	ErrDuplicateRuleSet = errors.New("rule set already registered")
	ErrDuplicateRule    = errors.New("rule already registered")
	ErrRuleSetCycle     = errors.New("rule set references itself")
	ErrInvalidConfig    = errors.New("invalid rule configuration")
	ErrFixerApply       = errors.New("fixer failed")
	ErrDiverged         = errors.New("fixers did not converge")
	ErrCachePersist     = errors.New("cache could not be persisted")
	ErrReadFile         = errors.New("cannot read file")
	ErrWriteFile        = errors.New("cannot write file")
	ErrWriteRace        = errors.New("file changed on disk during operation")
)

// ErrorCode provides a machine-readable error type for JSON output.
type ErrorCode string

const (
	ECNone           ErrorCode = ""
	ECUnparsable     ErrorCode = "ERR_UNPARSABLE_SOURCE"
	ECUnknownRule    ErrorCode = "ERR_UNKNOWN_RULE"
	ECUnknownRuleSet ErrorCode = "ERR_UNKNOWN_RULE_SET"
	ECInvalidName    ErrorCode = "ERR_INVALID_NAME"
	ECDuplicateSet   ErrorCode = "ERR_DUPLICATE_RULE_SET"
	ECDuplicateRule  ErrorCode = "ERR_DUPLICATE_RULE"
	ECRuleSetCycle   ErrorCode = "ERR_RULE_SET_CYCLE"
	ECConfigError    ErrorCode = "ERR_CONFIG"
	ECFixerApply     ErrorCode = "ERR_FIXER_APPLY"
	ECDiverged       ErrorCode = "ERR_DIVERGED"
	ECCachePersist   ErrorCode = "ERR_CACHE_PERSIST"
	ECReadError      ErrorCode = "ERR_READ_FILE"
	ECWriteError     ErrorCode = "ERR_WRITE_FILE"
	ECWriteRace      ErrorCode = "ERR_WRITE_RACE"
	ECUnknown        ErrorCode = "ERR_UNKNOWN"
)

var codes = []struct {
	err  error
	code ErrorCode
}{
	{ErrUnparsableSource, ECUnparsable},
	{ErrUnknownRule, ECUnknownRule},
	{ErrUnknownRuleSet, ECUnknownRuleSet},
	{ErrInvalidName, ECInvalidName},
	{ErrDuplicateRuleSet, ECDuplicateSet},
	{ErrDuplicateRule, ECDuplicateRule},
	{ErrRuleSetCycle, ECRuleSetCycle},
	{ErrInvalidConfig, ECConfigError},
	{ErrFixerApply, ECFixerApply},
	{ErrDiverged, ECDiverged},
	{ErrCachePersist, ECCachePersist},
	{ErrReadFile, ECReadError},
	{ErrWriteFile, ECWriteError},
	{ErrWriteRace, ECWriteRace},
}

// Error carries a sentinel together with the path or name it concerns.
// errors.Is matches both the sentinel and the wrapped cause.
type Error struct {
	Kind error
	Path string
	Msg  string
	Err  error
}

// Wrap builds an *Error for kind. path may be empty for run-level errors.
func Wrap(kind error, path, msg string, inner error) error {
	return &Error{Kind: kind, Path: path, Msg: msg, Err: inner}
}

func (e *Error) Error() string {
	s := e.Kind.Error()
	if e.Path != "" {
		s = e.Path + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Code reports the machine-readable code for err, ECNone for nil.
func Code(err error) ErrorCode {
	if err == nil {
		return ECNone
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ECUnknown
}

// IsConfigError reports whether err must abort a run before any file is processed.
func IsConfigError(err error) bool {
	switch Code(err) {
	case ECUnknownRule, ECUnknownRuleSet, ECInvalidName, ECDuplicateSet,
		ECDuplicateRule, ECRuleSetCycle, ECConfigError:
		return true
	}
	return false
}

// Errorf is a shorthand for Wrap with a formatted message and no cause.
func Errorf(kind error, path, format string, args ...any) error {
	return Wrap(kind, path, fmt.Sprintf(format, args...), nil)
}
