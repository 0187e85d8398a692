package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/nickyhof/SnapDB"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/db"
)

// maxRequestBytes bounds the body of a query request.
const maxRequestBytes = 1 << 20

// Server is an HTTP SQL server that exposes the SnapDB engine. Statements
// run one at a time; the engine itself has no locking.
type Server struct {
	instance   *SnapDB.Instance
	identity   core.Identity
	authConfig *AuthConfig
	mu         sync.Mutex
	listener   net.Listener
	httpServer *http.Server
}

// NewServer creates a new SQL server with the given SnapDB instance.
func NewServer(instance *SnapDB.Instance, identity core.Identity, authConfig *AuthConfig) *Server {
	return &Server{
		instance:   instance,
		identity:   identity,
		authConfig: authConfig,
	}
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/query", s.handleQuery)
	mux.HandleFunc("GET /api/tables", s.handleTables)
	mux.HandleFunc("DELETE /api/tables/{name}", s.handleDropTable)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	return mux
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("SQL Server listening on %s", listener.Addr())

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Serve error: %v", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	identity, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := DecodeRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	batch := s.execute(identity, req.Query)

	// a lone failing statement is a bad request; inside a larger batch the
	// failure stays an "Error:" entry of the result list
	if len(batch) == 1 && batch.Err() != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprint(batch.Value()))
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Result: batch.Value(),
		Meta: Meta{
			DurationSeconds: time.Since(startTime).Seconds(),
			Status:          fmt.Sprintf("%d %s", http.StatusOK, http.StatusText(http.StatusOK)),
		},
	})
}

func (s *Server) execute(identity core.Identity, query string) db.Batch {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instance.Engine(identity).ExecuteBatch(query)
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	s.mu.Lock()
	tables := s.instance.Engine(s.identity).Tables()
	s.mu.Unlock()

	response := make(map[string]TableResponse, len(tables))
	for _, table := range tables {
		response[table.Name] = TableResponse{Columns: table.Columns}
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	identity, err := s.authenticate(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	s.mu.Lock()
	result, err := s.instance.Engine(identity).DropTable(r.PathValue("name"))
	s.mu.Unlock()

	if err != nil {
		code := http.StatusBadRequest
		if errors.Is(err, core.ErrNotFound) {
			code = http.StatusNotFound
		}
		writeError(w, code, "Error: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, QueryResponse{
		Result: result.Value(),
		Meta: Meta{
			Status: fmt.Sprintf("%d %s", http.StatusOK, http.StatusText(http.StatusOK)),
		},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if _, err := s.authenticate(r); err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	persistence := s.instance.Persistence
	if persistence == nil || !persistence.HasHistory() {
		writeJSON(w, http.StatusOK, []TransactionResponse{})
		return
	}

	history, err := persistence.History()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	response := make([]TransactionResponse, len(history))
	for i, txn := range history {
		response[i] = TransactionResponse{
			Id:      txn.Id,
			When:    txn.When.Format(time.RFC3339),
			Author:  txn.Author,
			Message: txn.Message,
		}
	}
	writeJSON(w, http.StatusOK, response)
}
