// Package main provides an HTTP SQL server for SnapDB.
package main

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/nickyhof/SnapDB/core"
)

// QueryRequest is the body of POST /api/query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse carries the batch value: the row list or status string of
// a single statement, or a list with one entry per statement.
type QueryResponse struct {
	Result any  `json:"result"`
	Meta   Meta `json:"meta"`
}

type Meta struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// TableResponse describes one table in GET /api/tables.
type TableResponse struct {
	Columns []core.Column `json:"columns"`
}

// TransactionResponse describes one commit in GET /api/history.
type TransactionResponse struct {
	Id      string `json:"id"`
	When    string `json:"when"`
	Author  string `json:"author"`
	Message string `json:"message"`
}

// DecodeRequest parses a JSON request from a byte slice.
func DecodeRequest(data []byte) (QueryRequest, error) {
	var req QueryRequest
	err := json.Unmarshal(data, &req)
	return req, err
}

func writeJSON(w http.ResponseWriter, code int, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		code = http.StatusInternalServerError
		data, _ = json.Marshal(ErrorResponse{Error: err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, ErrorResponse{Error: message})
}
