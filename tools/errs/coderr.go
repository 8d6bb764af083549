package errs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Error codes grouped by family. The websocket layer only ever leaks Msg to
// the client; Detail stays in the logs.
const (
	ServerInternalError = 500

	AuthenticationErrorCode = 1101
	AuthorizationErrorCode  = 1102
	ValidationErrorCode     = 1201
	PersistenceErrorCode    = 1301
)

var (
	ErrInternal       = NewCodeError(ServerInternalError, "internal error")
	ErrAuthentication = NewCodeError(AuthenticationErrorCode, "Authentication error")
	ErrUserNotFound   = NewCodeError(AuthenticationErrorCode, "User not found")
	ErrNotParticipant = NewCodeError(AuthorizationErrorCode, "You are not a participant in this chat")
	ErrChatNotFound   = NewCodeError(AuthorizationErrorCode, "Chat not found")
	ErrEmptyText      = NewCodeError(ValidationErrorCode, "Message text cannot be empty")
	ErrTextTooLong    = NewCodeError(ValidationErrorCode, "Message is too long. Max 2000 characters.")
	ErrPersistence    = NewCodeError(PersistenceErrorCode, "Failed to send message")
)

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

// WithDetail returns a copy carrying extra detail; the original sentinel is
// never mutated so errors.Is keeps matching by code.
func (e *CodeError) WithDetail(detail string) *CodeError {
	c := e.clone()
	if c.Detail == "" {
		c.Detail = detail
	} else {
		c.Detail += ", " + detail
	}
	return c
}

func (e *CodeError) WrapMsg(msg string, kv ...any) error {
	return errors.WithStack(e.WithDetail(toString(msg, kv)))
}

func (e *CodeError) clone() *CodeError {
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: e.Detail}
}

func (e *CodeError) Is(err error) bool {
	var codeErr *CodeError
	if !errors.As(err, &codeErr) {
		return false
	}
	return e.Code == codeErr.Code
}

func (e *CodeError) Error() string {
	v := make([]string, 0, 3)
	v = append(v, strconv.Itoa(e.Code), e.Msg)
	if e.Detail != "" {
		v = append(v, e.Detail)
	}
	return strings.Join(v, " ")
}

// CodeOf extracts the CodeError carried anywhere in err's chain, or nil.
func CodeOf(err error) *CodeError {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr
	}
	return nil
}

func New(msg string, kv ...any) error {
	return errors.New(toString(msg, kv))
}

func Wrap(err error) error {
	return errors.WithStack(err)
}

func WrapMsg(err error, msg string, kv ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, toString(msg, kv))
}

func toString(msg string, kv []any) string {
	var sb strings.Builder
	sb.WriteString(msg)
	for i := 0; i < len(kv); i += 2 {
		if i != 0 || msg != "" {
			sb.WriteString(", ")
		}
		key, ok := kv[i].(string)
		if !ok {
			key = "unknown"
		}
		sb.WriteString(key)
		sb.WriteString("=")
		if i+1 < len(kv) {
			sb.WriteString(anyString(kv[i+1]))
		}
	}
	return sb.String()
}

func anyString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case error:
		return t.Error()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprint(t)
	}
}
