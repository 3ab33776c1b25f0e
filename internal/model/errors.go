package model

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, machine-readable classification for run failures.
type ErrorCode string

const (
	ErrParse       ErrorCode = "ERR_PARSE"
	ErrRuleCompile ErrorCode = "ERR_RULE_COMPILE"
	ErrIO          ErrorCode = "ERR_IO"
	ErrWriteRace   ErrorCode = "ERR_WRITE_RACE"
	ErrVerify      ErrorCode = "ERR_VERIFY"
	ErrConfig      ErrorCode = "ERR_CONFIG"
	ErrDB          ErrorCode = "ERR_DB"
	ErrUnknown     ErrorCode = "ERR_UNKNOWN"
)

// CLIError pairs an ErrorCode with a human-readable message and an
// optional underlying cause.
type CLIError struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e CLIError) Unwrap() error { return e.Err }

// Wrap builds a CLIError around err. A nil err is allowed for failures
// that have no underlying cause.
func Wrap(code ErrorCode, msg string, err error) CLIError {
	return CLIError{Code: code, Msg: msg, Err: err}
}

// CodeOf reports the ErrorCode carried by err, or ErrUnknown when err
// has no CLIError in its chain. A nil err maps to the empty code.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ce CLIError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ErrUnknown
}
