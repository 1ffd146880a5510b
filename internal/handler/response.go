package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go-admin-panel/internal/model"
	"go-admin-panel/internal/permission"
	"go-admin-panel/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Message = "Invalid credentials"
	} else if errors.Is(err, model.ErrUnauthenticated) || errors.Is(err, model.ErrRefreshFailed) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHENTICATED"
		body.Message = "Session ended, sign in again"
	} else if errors.Is(err, model.ErrLookupFailed) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHENTICATED"
		body.Message = "Operator could not be resolved"
	} else if errors.Is(err, model.ErrTokenInvalid) {
		status = http.StatusForbidden
		body.Code = "TOKEN_INVALID"
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Message = "Access denied"
	} else if errors.Is(err, model.ErrNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Message = "Not found"
	} else if errors.Is(err, model.ErrInvalidInput) ||
		errors.Is(err, permission.ErrUnknownPage) ||
		errors.Is(err, permission.ErrUnknownAction) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Message = "Invalid input"
		body.Details = err.Error()
	} else if errors.Is(err, model.ErrNotReplayable) {
		status = http.StatusBadGateway
		body.Code = "UPSTREAM_ERROR"
		body.Message = "Request could not be replayed after refresh"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	if status == 0 {
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}
