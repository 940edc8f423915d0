package util

import (
	"errors"
	"fmt"
	"net/http"
)

// FaultKind 错误分类：校验 / 鉴权 / 状态冲突 / 数据完整性 / 下游不可用
type FaultKind int

const (
	FaultUnknown FaultKind = iota
	FaultValidation
	FaultAuthorization
	FaultStateConflict
	FaultDataIntegrity
	FaultDownstream
)

type Fault struct {
	Kind    FaultKind
	Message string
	Err     error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return f.Message + ": " + f.Err.Error()
	}
	return f.Message
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func Validationf(format string, args ...interface{}) error {
	return &Fault{Kind: FaultValidation, Message: fmt.Sprintf(format, args...)}
}

func Authorizationf(format string, args ...interface{}) error {
	return &Fault{Kind: FaultAuthorization, Message: fmt.Sprintf(format, args...)}
}

func StateConflictf(format string, args ...interface{}) error {
	return &Fault{Kind: FaultStateConflict, Message: fmt.Sprintf(format, args...)}
}

func DataIntegrityf(err error, format string, args ...interface{}) error {
	return &Fault{Kind: FaultDataIntegrity, Message: fmt.Sprintf(format, args...), Err: err}
}

func Downstreamf(err error, format string, args ...interface{}) error {
	return &Fault{Kind: FaultDownstream, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf 提取错误分类，非 Fault 返回 FaultUnknown
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return FaultUnknown
}

// HTTPStatus 错误分类到 HTTP 状态码
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrExamNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrAttemptNotFound),
		errors.Is(err, ErrSubmissionNotFound),
		errors.Is(err, ErrResultNotFound):
		return http.StatusNotFound
	}
	switch KindOf(err) {
	case FaultValidation:
		return http.StatusBadRequest
	case FaultAuthorization:
		return http.StatusForbidden
	case FaultStateConflict:
		return http.StatusConflict
	case FaultDataIntegrity:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("email already registered")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrExamNotFound       = errors.New("exam not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrAttemptNotFound    = errors.New("exam attempt not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrResultNotFound     = errors.New("result not found")
)
