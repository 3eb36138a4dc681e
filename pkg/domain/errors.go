package domain

import (
	"errors"
	"fmt"
)

// ErrorKind はユーザーに返すエラーの分類です。
type ErrorKind int

const (
	// KindProvider は分類できなかったプロバイダー由来の失敗です。
	KindProvider ErrorKind = iota
	KindValidation
	KindDecode
	KindProviderAuth
	KindProviderQuota
	KindEmptyResult
	KindCountMismatch
	KindNotSupported
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindDecode:
		return "decode"
	case KindProviderAuth:
		return "provider_auth"
	case KindProviderQuota:
		return "provider_quota"
	case KindEmptyResult:
		return "empty_result"
	case KindCountMismatch:
		return "count_mismatch"
	case KindNotSupported:
		return "not_supported"
	default:
		return "provider"
	}
}

// Error は分類とローカライズ済みメッセージを持つエラーです。
// Error() はそのまま画面に表示できるメッセージを返します。
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is は同じ Kind の番兵エラーと一致します。
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// errors.Is で分類を判定するための番兵です。
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrDecode        = &Error{Kind: KindDecode}
	ErrProviderAuth  = &Error{Kind: KindProviderAuth}
	ErrProviderQuota = &Error{Kind: KindProviderQuota}
	ErrEmptyResult   = &Error{Kind: KindEmptyResult}
	ErrCountMismatch = &Error{Kind: KindCountMismatch}
	ErrNotSupported  = &Error{Kind: KindNotSupported}
	ErrProvider      = &Error{Kind: KindProvider}
)

// NewError は指定した分類のエラーを作成します。
func NewError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// ValidationError は入力不足を表すエラーを作成します。
func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// DecodeError は画像の変換失敗を表すエラーを作成します。
func DecodeError(message string, cause error) *Error {
	return &Error{Kind: KindDecode, Message: message, Err: cause}
}

// EmptyResultError は画像が1枚も返らなかったことを表すエラーを作成します。
func EmptyResultError(message string) *Error {
	return &Error{Kind: KindEmptyResult, Message: message}
}

// CountMismatchError は返却件数が要求と一致しないことを表すエラーを作成します。
func CountMismatchError(message string, want, got int) *Error {
	return &Error{Kind: KindCountMismatch, Message: message, Err: fmt.Errorf("want %d items, got %d", want, got)}
}

// NotSupportedError は未提供機能の呼び出しを表すエラーを作成します。
func NotSupportedError(message string) *Error {
	return &Error{Kind: KindNotSupported, Message: message}
}

// KindOf は err に含まれる *Error の分類を返します。見つからなければ KindProvider です。
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindProvider
}

// AsError は err に含まれる *Error を取り出します。
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
