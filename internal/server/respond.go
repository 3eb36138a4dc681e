package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

const msgBadRequest = "请求格式不正确。"

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.NewError(domain.KindValidation, msgBadRequest, err)
	}
	return nil
}

// statusFor はエラー分類を HTTP ステータスに対応付けます。
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindDecode:
		return http.StatusUnprocessableEntity
	case domain.KindProviderAuth:
		return http.StatusUnauthorized
	case domain.KindProviderQuota:
		return http.StatusTooManyRequests
	case domain.KindNotSupported:
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := domain.AsError(err)
	if !ok {
		e = domain.NewError(domain.KindProvider, err.Error(), err)
	}
	status := statusFor(e.Kind)

	fields := []zap.Field{
		zap.String("request_id", requestIDFrom(r.Context())),
		zap.String("kind", e.Kind.String()),
		zap.Int("status", status),
	}
	if cause := errors.Unwrap(e); cause != nil {
		fields = append(fields, zap.NamedError("cause", cause))
	}
	s.logger.Warn(e.Message, fields...)

	writeJSON(w, status, errorBody{Error: errorDetail{Kind: e.Kind.String(), Message: e.Message}})
}
