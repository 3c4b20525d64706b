package api

import (
	"encoding/json"
	"net/http"
)

// Status tags carried in every response envelope. Clients branch on the tag,
// not on the HTTP status alone: a wrong or expired reset code is a normal
// 200 response tagged FAILURE, not an error.
const (
	StatusSuccess        = "SUCCESS"
	StatusFailure        = "FAILURE"
	StatusRecordNotFound = "RECORD_NOT_FOUND"
	StatusBadRequest     = "BAD_REQUEST"
	StatusUnauthorized   = "UNAUTHORIZED"
	StatusServerError    = "SERVER_ERROR"
)

type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type Pagination struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

type PageEnvelope struct {
	Status     string     `json:"status"`
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func RespondJSON(w http.ResponseWriter, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(payload)
}

func Success(w http.ResponseWriter, data any) {
	RespondJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func Failure(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusOK, Envelope{Status: StatusFailure, Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, Envelope{Status: StatusBadRequest, Message: message})
}

func NotFound(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusNotFound, Envelope{Status: StatusRecordNotFound, Message: message})
}

func Unauthorized(w http.ResponseWriter) {
	RespondJSON(w, http.StatusUnauthorized, Envelope{Status: StatusUnauthorized, Message: "unauthorized"})
}

func ServerError(w http.ResponseWriter) {
	RespondJSON(w, http.StatusInternalServerError, Envelope{Status: StatusServerError, Message: "internal error"})
}

func Page(w http.ResponseWriter, data any, p Pagination) {
	RespondJSON(w, http.StatusOK, PageEnvelope{Status: StatusSuccess, Data: data, Pagination: p})
}
