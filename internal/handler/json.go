package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/knapsack-ga/backend/internal/knapsack"
)

// 实验设置的请求体很小，1MB 足够
const maxRequestBodyBytes = 1 << 20

func (h *Handler) logInternalServerError(r *http.Request, err error) {
	slog.Error("服务器内部错误", "method", r.Method, "path", r.URL.Path, "error", err)
}

// readJSON 只接受单个 JSON 对象，未知字段与多余的数据都视为错误
func (h *Handler) readJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxBytesErr *http.MaxBytesError
		switch {
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("请求体中的 JSON 格式错误（位置 %d）", syntaxErr.Offset)
		case errors.As(err, &typeErr):
			return fmt.Errorf("字段 %s 的类型错误", typeErr.Field)
		case errors.As(err, &maxBytesErr):
			return errors.New("请求体过大")
		case errors.Is(err, io.EOF):
			return errors.New("请求体不能为空")
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("请求体中的 JSON 不完整")
		default:
			return err
		}
	}

	if dec.More() {
		return errors.New("请求体只能包含一个 JSON 对象")
	}

	return nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logInternalServerError(r, err)
	}
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func (h *Handler) errorResponse(w http.ResponseWriter, r *http.Request, msg string) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: false,
		Message: msg,
		Data:    nil,
	})
}

// badRequest 翻译参数校验错误，遗传算法配置错误则直接返回其中文描述
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.As(err, &validationErrors) && len(validationErrors) > 0:
		h.errorResponse(w, r, validationErrors[0].Translate(h.translator))
	case errors.Is(err, knapsack.ErrInvalidConfiguration),
		errors.Is(err, knapsack.ErrEmptyCatalog),
		errors.Is(err, knapsack.ErrInvalidGenomeLength):
		h.errorResponse(w, r, "实验参数无效："+err.Error())
	default:
		h.errorResponse(w, r, err.Error())
	}
}

func (h *Handler) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	h.logInternalServerError(r, err)
	h.writeJSON(w, r, http.StatusInternalServerError, Response{
		Success: false,
		Message: "服务器内部错误",
		Data:    nil,
	})
}

func (h *Handler) successResponse(w http.ResponseWriter, r *http.Request, msg string, data any) {
	h.writeJSON(w, r, http.StatusOK, Response{
		Success: true,
		Message: msg,
		Data:    data,
	})
}
