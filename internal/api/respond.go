package api

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response shape the client expects for mutations and
// failures. Reads return raw JSON instead.
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// The failure taxonomy. Every handler maps its errors through these kinds so
// status codes are chosen in exactly one place.
type faultKind int

const (
	faultInvalid faultKind = iota
	faultUnauthorized
	faultNotFound
	faultConflict
	faultUpstream
	faultInternal
)

var faultStatus = map[faultKind]int{
	faultInvalid:      http.StatusBadRequest,
	faultUnauthorized: http.StatusUnauthorized,
	faultNotFound:     http.StatusNotFound,
	faultConflict:     http.StatusConflict,
	faultUpstream:     http.StatusBadGateway,
	faultInternal:     http.StatusInternalServerError,
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Status: status, Message: message})
}

func fail(w http.ResponseWriter, kind faultKind, message string) {
	status := faultStatus[kind]
	writeMessage(w, status, message)
}

func badRequest(w http.ResponseWriter, message string) {
	fail(w, faultInvalid, message)
}

func unauthorized(w http.ResponseWriter, message string) {
	fail(w, faultUnauthorized, message)
}

func notFound(w http.ResponseWriter, message string) {
	fail(w, faultNotFound, message)
}

func conflict(w http.ResponseWriter, message string) {
	fail(w, faultConflict, message)
}

func upstreamError(w http.ResponseWriter, message string) {
	fail(w, faultUpstream, message)
}

func internalError(w http.ResponseWriter) {
	fail(w, faultInternal, "Internal server error")
}
