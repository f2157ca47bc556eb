package api

import (
	"errors"
	"net/http"
)

// AppError is an error with an HTTP status and a stable machine code.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewChatError(msg string) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Code: "CHAT_ERROR", Message: msg}
}

func NewBadRequestError(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: msg}
}

// HandleError writes err as a {code, message} JSON body. Errors that are not
// AppError are treated as generic chat failures.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		JSON(w, appErr.Status, appErr)
		return
	}
	JSON(w, http.StatusInternalServerError, NewChatError("채팅 처리 중 오류가 발생했습니다: "+err.Error()))
}
