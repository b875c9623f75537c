package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrDecode           = errors.New("payload could not be decoded")
	ErrValidation       = errors.New("payload failed validation")
	ErrNotFound         = errors.New("not found")
	ErrStorage          = errors.New("storage failure")
	ErrUpstream         = errors.New("upstream failure")
	ErrTimeout          = errors.New("timed out")
	ErrAlreadyPublished = errors.New("post already published")
)

// DecodeError carries the form field names seen by the fallback decoder.
// Error() never includes payload content.
type DecodeError struct {
	Fields []string
	Err    error
}

func (e *DecodeError) Error() string {
	return ErrDecode.Error()
}

// Diagnostic is meant for internal logs only.
func (e *DecodeError) Diagnostic() string {
	var b strings.Builder
	b.WriteString("form fields: [")
	b.WriteString(strings.Join(e.Fields, ", "))
	b.WriteString("]")
	if e.Err != nil {
		b.WriteString("; cause: ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
func (e *DecodeError) Unwrap() error        { return e.Err }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// StorageError wraps a persistence failure. Code is the SQLSTATE when the
// driver reported one.
type StorageError struct {
	Op   string
	Code string
	Err  error
}

func (e *StorageError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("storage: %s (sqlstate %s): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Is(target error) bool { return target == ErrStorage }
func (e *StorageError) Unwrap() error        { return e.Err }

type UpstreamError struct {
	StatusCode int
	Reason     string
	Err        error
}

func (e *UpstreamError) Error() string {
	msg := "upstream: " + e.Reason
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }
func (e *UpstreamError) Unwrap() error        { return e.Err }

type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// Retriable reports whether the caller may retry the operation that failed.
// Client-caused failures never are.
func Retriable(err error) bool {
	return errors.Is(err, ErrStorage) || errors.Is(err, ErrUpstream) || errors.Is(err, ErrTimeout)
}
