// Package controllers contains the HTTP handlers. Handlers validate input
// shape, call a service, and translate service errors into a structured
// {success, error} envelope with the matching status code.
package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"go-marketplace/middleware"
	"go-marketplace/services"
	"go-marketplace/utils"
)

type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: true, Data: data})
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope{Success: false, Error: message})
}

// writeError maps a service error onto the HTTP taxonomy: 400 for
// validation and business-rule failures, 401/403/404 as named, 500 for
// store or unexpected failures. Partial checkout failures are never
// reported as success.
func writeError(w http.ResponseWriter, log *zap.SugaredLogger, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrInsufficientStock),
		errors.Is(err, services.ErrAlreadyReviewed),
		errors.Is(err, services.ErrInvalidStatusTransition):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrForbidden):
		writeErrorMessage(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, services.ErrCheckoutInconsistent):
		log.Errorw("checkout inconsistency surfaced to client", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "checkout failed, support has been notified")
	default:
		log.Errorw("request failed", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Server Error")
	}
}

// caller extracts the authenticated user's id and claims from the request.
func caller(r *http.Request) (primitive.ObjectID, *utils.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return primitive.NilObjectID, nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, false
	}
	return id, claims, true
}

func pathID(vars map[string]string, key string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(vars[key])
	return id, err == nil
}
