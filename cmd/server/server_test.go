package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/nickyhof/SnapDB"
	"github.com/nickyhof/SnapDB/core"
	"github.com/nickyhof/SnapDB/ps"
)

type rawQueryResponse struct {
	Result json.RawMessage `json:"result"`
	Meta   Meta            `json:"meta"`
	Error  string          `json:"error"`
}

func setupTestServer(t *testing.T, authConfig *AuthConfig) (*httptest.Server, *ps.Persistence) {
	t.Helper()
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	instance := SnapDB.Open(persistence)
	identity := core.Identity{Name: "Default User", Email: "default@test.com"}

	server := httptest.NewServer(NewServer(instance, identity, authConfig).Handler())
	t.Cleanup(server.Close)
	return server, persistence
}

func doRequest(t *testing.T, method, url, token, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response: %v", err)
	}
	return resp.StatusCode, data
}

func sendQuery(t *testing.T, server *httptest.Server, token, query string) (int, rawQueryResponse) {
	t.Helper()
	body, _ := json.Marshal(QueryRequest{Query: query})
	code, data := doRequest(t, http.MethodPost, server.URL+"/api/query", token, string(body))

	var resp rawQueryResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		t.Fatalf("Failed to parse response %s: %v", data, err)
	}
	return code, resp
}

func TestServerStartStop(t *testing.T) {
	persistence, err := ps.NewMemoryPersistence()
	if err != nil {
		t.Fatalf("Failed to create persistence: %v", err)
	}
	server := NewServer(SnapDB.Open(persistence), core.Identity{Name: "test"}, nil)
	if err := server.Start("127.0.0.1:0"); err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}

	if server.Addr() == "" {
		t.Error("Expected non-empty address")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Errorf("Failed to stop server: %v", err)
	}
}

func TestServerQueryMetadata(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	code, resp := sendQuery(t, server, "", "CREATE TABLE test_meta (id INT)")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, resp.Error)
	}
	if resp.Meta.Status != "200 OK" {
		t.Errorf("Test Failed: Expected %+v, got %+v", "200 OK", resp.Meta.Status)
	}
	if resp.Meta.DurationSeconds < 0 {
		t.Errorf("Expected non-negative duration, got %v", resp.Meta.DurationSeconds)
	}
	if string(resp.Result) != `"Table 'test_meta' created."` {
		t.Errorf("Unexpected result: %s", resp.Result)
	}
}

func TestServerSelect(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	code, resp := sendQuery(t, server, "", `
		CREATE TABLE users (id INT PRIMARY KEY, name TEXT);
		INSERT INTO users (id, name) VALUES (1, 'Alice');
		INSERT INTO users (id, name) VALUES (2, 'Bob');`)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, resp.Error)
	}

	var statuses []string
	if err := json.Unmarshal(resp.Result, &statuses); err != nil {
		t.Fatalf("Expected a list of statuses, got %s", resp.Result)
	}
	expected := []string{"Table 'users' created.", "Row inserted.", "Row inserted."}
	if !reflect.DeepEqual(statuses, expected) {
		t.Errorf("Test Failed: Expected %+v, got %+v", expected, statuses)
	}

	code, resp = sendQuery(t, server, "", "SELECT name, id FROM users")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", code, resp.Error)
	}
	if string(resp.Result) != `[{"name":"Alice","id":1},{"name":"Bob","id":2}]` {
		t.Errorf("Unexpected rows: %s", resp.Result)
	}
}

func TestServerError(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	code, resp := sendQuery(t, server, "", "SELECT * FROM nonexistent")
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", code)
	}
	if resp.Error != "Error: Table 'nonexistent' does not exist." {
		t.Errorf("Unexpected error: %q", resp.Error)
	}

	code, resp = sendQuery(t, server, "", "")
	if code != http.StatusBadRequest || resp.Error != "No query provided" {
		t.Errorf("Expected missing query error, got %d %q", code, resp.Error)
	}

	code, _ = doRequest(t, http.MethodPost, server.URL+"/api/query", "", "{not json")
	if code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed body, got %d", code)
	}
}

func TestServerBatchWithError(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	code, resp := sendQuery(t, server, "", "CREATE TABLE t (a INT); SELECT * FROM missing")
	if code != http.StatusOK {
		t.Fatalf("Expected 200 for a batch, got %d", code)
	}

	var values []any
	if err := json.Unmarshal(resp.Result, &values); err != nil {
		t.Fatalf("Expected a list, got %s", resp.Result)
	}
	if len(values) != 2 {
		t.Fatalf("Expected 2 values, got %v", values)
	}
	if message, _ := values[1].(string); !strings.HasPrefix(message, "Error:") {
		t.Errorf("Expected error marker, got %v", values[1])
	}
}

func TestServerTables(t *testing.T) {
	server, _ := setupTestServer(t, nil)

	code, data := doRequest(t, http.MethodGet, server.URL+"/api/tables", "", "")
	if code != http.StatusOK || strings.TrimSpace(string(data)) != "{}" {
		t.Errorf("Expected empty tables, got %d %s", code, data)
	}

	sendQuery(t, server, "", "CREATE TABLE users (id INT PRIMARY KEY, name STRING)")

	code, data = doRequest(t, http.MethodGet, server.URL+"/api/tables", "", "")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	var tables map[string]struct {
		Columns []map[string]any `json:"columns"`
	}
	if err := json.Unmarshal(data, &tables); err != nil {
		t.Fatalf("Failed to parse tables: %v", err)
	}
	users, ok := tables["users"]
	if !ok || len(users.Columns) != 2 {
		t.Fatalf("Expected users with 2 columns, got %s", data)
	}
	if users.Columns[0]["name"] != "id" || users.Columns[0]["type"] != "INTEGER" || users.Columns[0]["is_primary"] != true {
		t.Errorf("Unexpected first column: %v", users.Columns[0])
	}
}

func TestServerDropTable(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	sendQuery(t, server, "", "CREATE TABLE users (id INT)")

	code, _ := doRequest(t, http.MethodDelete, server.URL+"/api/tables/users", "", "")
	if code != http.StatusOK {
		t.Errorf("Expected 200, got %d", code)
	}

	code, _ = doRequest(t, http.MethodDelete, server.URL+"/api/tables/users", "", "")
	if code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", code)
	}
}

func TestServerHistory(t *testing.T) {
	server, _ := setupTestServer(t, nil)
	sendQuery(t, server, "", "CREATE TABLE users (id INT)")
	sendQuery(t, server, "", "INSERT INTO users (id) VALUES (1)")

	code, data := doRequest(t, http.MethodGet, server.URL+"/api/history", "", "")
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", code)
	}

	var history []TransactionResponse
	if err := json.Unmarshal(data, &history); err != nil {
		t.Fatalf("Failed to parse history: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("Expected 2 commits, got %d", len(history))
	}
}

// createTestJWT creates a JWT token for testing
func createTestJWT(t *testing.T, secret, name, email string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"name":  name,
		"email": email,
		"iss":   "snapdb-test",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("Failed to create test JWT: %v", err)
	}
	return tokenString
}

func TestAuthRequired(t *testing.T) {
	server, _ := setupTestServer(t, &AuthConfig{JWTSecret: "secret"})

	code, resp := sendQuery(t, server, "", "SELECT * FROM t")
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", code)
	}
	if resp.Error == "" {
		t.Error("Expected error message")
	}

	code, _ = doRequest(t, http.MethodGet, server.URL+"/api/tables", "", "")
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for tables, got %d", code)
	}
}

func TestAuthWithInvalidJWT(t *testing.T) {
	server, _ := setupTestServer(t, &AuthConfig{JWTSecret: "secret", Issuer: "snapdb-test"})

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", createTestJWT(t, "other-secret", "Eve", "eve@example.com")},
		{"missing identity", createTestJWT(t, "secret", "", "")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, resp := sendQuery(t, server, tt.token, "CREATE TABLE t (a INT)")
			if code != http.StatusUnauthorized {
				t.Errorf("Expected 401, got %d", code)
			}
			if resp.Error == "" {
				t.Error("Expected error message")
			}
		})
	}
}

func TestAuthWrongIssuer(t *testing.T) {
	server, _ := setupTestServer(t, &AuthConfig{JWTSecret: "secret", Issuer: "someone-else"})

	code, _ := sendQuery(t, server, createTestJWT(t, "secret", "Alice", "alice@example.com"), "CREATE TABLE t (a INT)")
	if code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", code)
	}
}

// TestIdentityInCommitsUnauthenticated verifies the default identity is used
// in commits when auth is disabled
func TestIdentityInCommitsUnauthenticated(t *testing.T) {
	server, persistence := setupTestServer(t, nil)

	if code, resp := sendQuery(t, server, "", "CREATE TABLE identity1 (a INT)"); code != http.StatusOK {
		t.Fatalf("Query failed: %s", resp.Error)
	}

	txn := persistence.LatestTransaction()
	expectedAuthor := "Default User <default@test.com>"
	if txn.Author != expectedAuthor {
		t.Errorf("Expected commit author '%s', got '%s'", expectedAuthor, txn.Author)
	}
}

// TestIdentityInCommitsAuthenticated verifies the JWT identity is used in
// commits
func TestIdentityInCommitsAuthenticated(t *testing.T) {
	secret := "test-secret-for-identity"
	server, persistence := setupTestServer(t, &AuthConfig{JWTSecret: secret})

	token := createTestJWT(t, secret, "JWT Test User", "jwtuser@example.com")
	if code, resp := sendQuery(t, server, token, "CREATE TABLE identity2 (a INT)"); code != http.StatusOK {
		t.Fatalf("Query failed: %s", resp.Error)
	}

	txn := persistence.LatestTransaction()
	expectedAuthor := "JWT Test User <jwtuser@example.com>"
	if txn.Author != expectedAuthor {
		t.Errorf("Expected commit author '%s', got '%s'", expectedAuthor, txn.Author)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		token   string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer  abc ", "abc", false},
		{"", "", true},
		{"Basic abc", "", true},
		{"Bearer", "", true},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", bytes.NewReader(nil))
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		token, err := bearerToken(req)
		if (err != nil) != tt.wantErr || token != tt.token {
			t.Errorf("%q: Test Failed: Expected %+v, got %+v (%v)", tt.header, tt.token, token, err)
		}
	}
}
