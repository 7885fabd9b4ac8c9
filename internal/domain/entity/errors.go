package entity

import (
	"errors"
	"fmt"
)

// ErrorKind は失敗した処理段階を表す
type ErrorKind string

const (
	KindInvalidInput      ErrorKind = "invalid_input"
	KindUnsupportedInput  ErrorKind = "unsupported_input"
	KindUnsupportedFormat ErrorKind = "unsupported_format"
	KindFetch             ErrorKind = "fetch"
	KindResolution        ErrorKind = "resolution"
	KindExtraction        ErrorKind = "extraction"
	KindDownload          ErrorKind = "download"
	KindTranscription     ErrorKind = "transcription"
	KindSummarization     ErrorKind = "summarization"
	KindNotFound          ErrorKind = "not_found"
)

// Error is the error type every pipeline stage returns at its boundary.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError tags err with kind. A nil err yields an Error carrying only the message.
func NewError(kind ErrorKind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Errorf builds an Error without a wrapped cause.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	k, ok := KindOf(err)
	if !ok {
		return false
	}
	switch k {
	case KindInvalidInput, KindUnsupportedInput, KindUnsupportedFormat:
		return true
	default:
		return false
	}
}

// UpstreamError はLLM APIが返した失敗レスポンス
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
