package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"rubrica/internal/auth"
	"rubrica/internal/config"
	"rubrica/internal/handlers"
	"rubrica/internal/middleware"
	"rubrica/internal/repository"
	"rubrica/internal/router"
	"rubrica/internal/testutil"
)

// testAPI is a fully wired HTTP API over a disposable database
type testAPI struct {
	server *httptest.Server
	db     *testutil.TestDatabase
}

// setupAPI starts the database container and an HTTP server with the same
// middleware chain the real binary uses, minus rate limiting
func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	td := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { td.Cleanup(t) })

	userRepo := repository.NewUserRepository(td.DB)
	reportRepo := repository.NewReportRepository(td.DB)
	listRepo := repository.NewListRepository(td.DB)

	authService := auth.NewService(&config.AuthConfig{TokenSecret: "test-secret-key"})

	authMw := middleware.NewAuthMiddleware(userRepo)
	corsMw := middleware.NewCORSMiddleware(&config.CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	authHandler := handlers.NewAuthHandler(userRepo, authService)
	reportHandler := handlers.NewReportHandler(reportRepo)
	listHandler := handlers.NewListHandler(listRepo)

	mux := router.New(authHandler, reportHandler, listHandler, authMw)
	handler := middleware.SecurityHeaders(corsMw.Handler(mux))

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testAPI{server: server, db: td}
}

// request sends a JSON request and returns the status code and decoded body
func (api *testAPI) request(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()

	status, raw := api.rawRequest(t, method, path, token, body)

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("Failed to decode response body %q: %v", raw, err)
		}
	}
	return status, decoded
}

// requestList sends a JSON request whose response is a top-level array
func (api *testAPI) requestList(t *testing.T, method, path, token string, body any) (int, []map[string]any) {
	t.Helper()

	status, raw := api.rawRequest(t, method, path, token, body)

	var decoded []map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Failed to decode response body %q: %v", raw, err)
	}
	return status, decoded
}

func (api *testAPI) rawRequest(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, api.server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := api.server.Client().Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	return resp.StatusCode, raw
}

// registerUser creates an account through the API and returns its token
func (api *testAPI) registerUser(t *testing.T, email string) string {
	t.Helper()

	status, body := api.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":       "Test Teacher",
		"email":      email,
		"university": "Test University",
		"password":   "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("Registration of %s returned %d: %v", email, status, body)
	}

	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("Registration of %s returned no token", email)
	}
	return token
}

func TestAuthFlow(t *testing.T) {
	api := setupAPI(t)

	// Register
	status, body := api.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":       "Ana Torres",
		"email":      "ana@uni.edu",
		"university": "UNI",
		"password":   "secret123",
	})
	if status != http.StatusCreated {
		t.Fatalf("Register returned %d: %v", status, body)
	}
	firstToken, _ := body["token"].(string)
	if firstToken == "" {
		t.Fatal("Register returned no token")
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "ana@uni.edu" || user["name"] != "Ana Torres" {
		t.Errorf("Register returned unexpected user: %v", user)
	}
	if _, exposed := user["password"]; exposed {
		t.Error("Register response exposes the password field")
	}

	// Whoami with the fresh token
	status, body = api.request(t, http.MethodGet, "/api/v1/auth/me", firstToken, nil)
	if status != http.StatusOK {
		t.Fatalf("Me returned %d: %v", status, body)
	}
	if body["email"] != "ana@uni.edu" {
		t.Errorf("Me returned wrong identity: %v", body)
	}

	// Duplicate email is a conflict
	status, body = api.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"name":       "Impostor",
		"email":      "ana@uni.edu",
		"university": "Other",
		"password":   "different",
	})
	if status != http.StatusConflict {
		t.Errorf("Duplicate register returned %d, want 409: %v", status, body)
	}

	// Missing registration fields
	status, _ = api.request(t, http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "incomplete@uni.edu",
	})
	if status != http.StatusBadRequest {
		t.Errorf("Incomplete register returned %d, want 400", status)
	}

	// Wrong password
	status, body = api.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ana@uni.edu",
		"password": "wrong",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("Login with wrong password returned %d, want 401", status)
	}
	if body["message"] != "Invalid credentials" {
		t.Errorf("Login failure message = %v, want Invalid credentials", body["message"])
	}

	// Unknown email fails the same way
	status, body = api.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "nobody@uni.edu",
		"password": "secret123",
	})
	if status != http.StatusUnauthorized || body["message"] != "Invalid credentials" {
		t.Errorf("Login with unknown email returned %d %v, want 401 Invalid credentials", status, body)
	}

	// Successful login issues a fresh token that supersedes the old one
	status, body = api.request(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "ana@uni.edu",
		"password": "secret123",
	})
	if status != http.StatusOK {
		t.Fatalf("Login returned %d: %v", status, body)
	}
	secondToken, _ := body["token"].(string)
	if secondToken == "" || secondToken == firstToken {
		t.Fatal("Login did not issue a fresh token")
	}

	status, _ = api.request(t, http.MethodGet, "/api/v1/auth/me", secondToken, nil)
	if status != http.StatusOK {
		t.Errorf("Me with the new token returned %d, want 200", status)
	}

	status, body = api.request(t, http.MethodGet, "/api/v1/auth/me", firstToken, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("Me with the superseded token returned %d, want 401", status)
	}
	if body["message"] != "Invalid token" {
		t.Errorf("Superseded token message = %v, want Invalid token", body["message"])
	}

	// No token at all is reported distinctly
	status, body = api.request(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	if status != http.StatusUnauthorized || body["message"] != "No token provided" {
		t.Errorf("Me without token returned %d %v, want 401 No token provided", status, body)
	}
}

func TestReportLifecycle(t *testing.T) {
	api := setupAPI(t)
	token := api.registerUser(t, "ana@uni.edu")

	// Starts empty
	status, reports := api.requestList(t, http.MethodGet, "/api/v1/reports", token, nil)
	if status != http.StatusOK || len(reports) != 0 {
		t.Fatalf("Initial report listing returned %d with %d entries, want 200 and none", status, len(reports))
	}

	// Create with full sub-documents
	status, body := api.request(t, http.MethodPost, "/api/v1/reports", token, map[string]any{
		"infoGeneral":      map[string]any{"title": "Algebra I", "student": "Maria"},
		"configuracion":    map[string]any{"scale": 5},
		"nivelesDesempeno": []any{map[string]any{"name": "Excellent"}},
		"criterios":        []any{map[string]any{"name": "Rigor", "weight": 0.5}},
		"feedback":         map[string]any{"summary": "Solid work"},
		"resultados":       map[string]any{"score": 4.5},
	})
	if status != http.StatusCreated {
		t.Fatalf("Create report returned %d: %v", status, body)
	}
	id, _ := body["id"].(string)
	if id == "" {
		t.Fatal("Create report returned no id")
	}

	// Round-trip
	status, body = api.request(t, http.MethodGet, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusOK {
		t.Fatalf("Get report returned %d: %v", status, body)
	}
	info, _ := body["infoGeneral"].(map[string]any)
	if info["title"] != "Algebra I" || info["student"] != "Maria" {
		t.Errorf("Report general info did not round-trip: %v", body["infoGeneral"])
	}
	criterios, _ := body["criterios"].([]any)
	if len(criterios) != 1 {
		t.Errorf("Report criteria did not round-trip: %v", body["criterios"])
	}

	// A caller-supplied id is preserved
	status, body = api.request(t, http.MethodPost, "/api/v1/reports", token, map[string]any{
		"id":          "custom-id-1",
		"infoGeneral": map[string]any{"title": "Physics"},
	})
	if status != http.StatusCreated || body["id"] != "custom-id-1" {
		t.Errorf("Create with explicit id returned %d %v, want the supplied id", status, body)
	}

	// Omitted sub-documents default to their empty shape
	status, raw := api.rawRequest(t, http.MethodGet, "/api/v1/reports/custom-id-1", token, nil)
	if status != http.StatusOK {
		t.Fatalf("Get defaulted report returned %d", status)
	}
	var defaulted struct {
		Configuracion    json.RawMessage `json:"configuracion"`
		NivelesDesempeno json.RawMessage `json:"nivelesDesempeno"`
		Criterios        json.RawMessage `json:"criterios"`
	}
	if err := json.Unmarshal(raw, &defaulted); err != nil {
		t.Fatalf("Failed to decode defaulted report: %v", err)
	}
	if string(defaulted.Configuracion) != "{}" {
		t.Errorf("Omitted configuracion stored as %s, want {}", defaulted.Configuracion)
	}
	if string(defaulted.NivelesDesempeno) != "[]" || string(defaulted.Criterios) != "[]" {
		t.Errorf("Omitted sequences stored as %s / %s, want []", defaulted.NivelesDesempeno, defaulted.Criterios)
	}

	// Update replaces the sub-documents
	status, body = api.request(t, http.MethodPut, "/api/v1/reports/"+id, token, map[string]any{
		"infoGeneral": map[string]any{"title": "Algebra II", "student": "Maria"},
	})
	if status != http.StatusOK {
		t.Fatalf("Update report returned %d: %v", status, body)
	}
	status, body = api.request(t, http.MethodGet, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusOK {
		t.Fatalf("Get after update returned %d", status)
	}
	info, _ = body["infoGeneral"].(map[string]any)
	if info["title"] != "Algebra II" {
		t.Errorf("Update did not replace general info: %v", body["infoGeneral"])
	}

	// Another user cannot see, change or delete the report
	otherToken := api.registerUser(t, "luis@uni.edu")
	status, _ = api.request(t, http.MethodGet, "/api/v1/reports/"+id, otherToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("Foreign get returned %d, want 404", status)
	}
	status, _ = api.request(t, http.MethodPut, "/api/v1/reports/"+id, otherToken, map[string]any{
		"infoGeneral": map[string]any{"title": "Hijacked"},
	})
	if status != http.StatusNotFound {
		t.Errorf("Foreign update returned %d, want 404", status)
	}
	status, _ = api.request(t, http.MethodDelete, "/api/v1/reports/"+id, otherToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("Foreign delete returned %d, want 404", status)
	}

	// The owner still sees the untouched report, then deletes it
	status, _ = api.request(t, http.MethodGet, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusOK {
		t.Fatalf("Report disappeared after foreign access attempts: %d", status)
	}
	status, _ = api.request(t, http.MethodDelete, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusOK {
		t.Fatalf("Delete report returned %d", status)
	}
	status, _ = api.request(t, http.MethodGet, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("Get after delete returned %d, want 404", status)
	}
	status, _ = api.request(t, http.MethodDelete, "/api/v1/reports/"+id, token, nil)
	if status != http.StatusNotFound {
		t.Errorf("Second delete returned %d, want 404", status)
	}
}

func TestReportSearch(t *testing.T) {
	api := setupAPI(t)
	token := api.registerUser(t, "ana@uni.edu")
	otherToken := api.registerUser(t, "luis@uni.edu")

	create := func(tok, title, student string) {
		t.Helper()
		status, body := api.request(t, http.MethodPost, "/api/v1/reports", tok, map[string]any{
			"infoGeneral": map[string]any{"title": title, "student": student},
		})
		if status != http.StatusCreated {
			t.Fatalf("Create report for search returned %d: %v", status, body)
		}
	}

	create(token, "Algebra I", "Maria")
	create(token, "Algebra I", "Pedro")
	create(token, "Physics", "Maria")
	create(otherToken, "Algebra I", "Maria")

	// Both fields must match exactly
	status, results := api.requestList(t, http.MethodPost, "/api/v1/reports/search", token, map[string]string{
		"title":   "Algebra I",
		"student": "Maria",
	})
	if status != http.StatusOK {
		t.Fatalf("Search returned %d", status)
	}
	if len(results) != 1 {
		t.Errorf("Search matched %d reports, want exactly the owner's one", len(results))
	}

	// A near miss is not a match
	status, results = api.requestList(t, http.MethodPost, "/api/v1/reports/search", token, map[string]string{
		"title":   "Algebra",
		"student": "Maria",
	})
	if status != http.StatusOK || len(results) != 0 {
		t.Errorf("Partial title matched %d reports, want none", len(results))
	}

	// No match is an empty array, not an error
	status, results = api.requestList(t, http.MethodPost, "/api/v1/reports/search", token, map[string]string{
		"title":   "Chemistry",
		"student": "Nadie",
	})
	if status != http.StatusOK || len(results) != 0 {
		t.Errorf("Unmatched search returned %d with %d results, want 200 and none", status, len(results))
	}
}

func TestListLifecycle(t *testing.T) {
	api := setupAPI(t)
	token := api.registerUser(t, "ana@uni.edu")
	otherToken := api.registerUser(t, "luis@uni.edu")

	// Create
	status, body := api.request(t, http.MethodPost, "/api/v1/lists", token, map[string]string{
		"name": "Semester A",
	})
	if status != http.StatusCreated {
		t.Fatalf("Create list returned %d: %v", status, body)
	}
	listID := uint(body["id"].(float64))

	// A name is mandatory
	status, _ = api.request(t, http.MethodPost, "/api/v1/lists", token, map[string]string{})
	if status != http.StatusBadRequest {
		t.Errorf("Create list without name returned %d, want 400", status)
	}

	// Rename
	status, _ = api.request(t, http.MethodPut, fmt.Sprintf("/api/v1/lists/%d", listID), token, map[string]string{
		"name": "Semester B",
	})
	if status != http.StatusOK {
		t.Fatalf("Rename list returned %d", status)
	}
	status, body = api.request(t, http.MethodGet, fmt.Sprintf("/api/v1/lists/%d", listID), token, nil)
	if status != http.StatusOK || body["name"] != "Semester B" {
		t.Errorf("List after rename = %d %v, want 200 Semester B", status, body)
	}

	// Foreign lists are invisible on read but explicit on delete
	status, _ = api.request(t, http.MethodGet, fmt.Sprintf("/api/v1/lists/%d", listID), otherToken, nil)
	if status != http.StatusNotFound {
		t.Errorf("Foreign list get returned %d, want 404", status)
	}
	status, body = api.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%d", listID), otherToken, nil)
	if status != http.StatusForbidden {
		t.Errorf("Foreign list delete returned %d %v, want 403", status, body)
	}

	// A report keeps living when its list is deleted, with the association cleared
	status, body = api.request(t, http.MethodPost, "/api/v1/reports", token, map[string]any{
		"listaId":     listID,
		"infoGeneral": map[string]any{"title": "Algebra I", "student": "Maria"},
	})
	if status != http.StatusCreated {
		t.Fatalf("Create report in list returned %d: %v", status, body)
	}
	reportID := body["id"].(string)

	status, body = api.request(t, http.MethodGet, "/api/v1/reports/"+reportID, token, nil)
	if status != http.StatusOK || body["listaId"] == nil {
		t.Fatalf("Report before list deletion = %d %v, want an attached list", status, body)
	}

	status, _ = api.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%d", listID), token, nil)
	if status != http.StatusOK {
		t.Fatalf("Delete list returned %d", status)
	}

	status, body = api.request(t, http.MethodGet, "/api/v1/reports/"+reportID, token, nil)
	if status != http.StatusOK {
		t.Fatalf("Report after list deletion returned %d", status)
	}
	if body["listaId"] != nil {
		t.Errorf("Report still references the deleted list: %v", body["listaId"])
	}

	// Deleting the same list again is a 404
	status, _ = api.request(t, http.MethodDelete, fmt.Sprintf("/api/v1/lists/%d", listID), token, nil)
	if status != http.StatusNotFound {
		t.Errorf("Delete of removed list returned %d, want 404", status)
	}
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	api := setupAPI(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/auth/me"},
		{http.MethodGet, "/api/v1/reports"},
		{http.MethodPost, "/api/v1/reports"},
		{http.MethodPost, "/api/v1/reports/search"},
		{http.MethodGet, "/api/v1/reports/some-id"},
		{http.MethodPut, "/api/v1/reports/some-id"},
		{http.MethodDelete, "/api/v1/reports/some-id"},
		{http.MethodGet, "/api/v1/lists"},
		{http.MethodPost, "/api/v1/lists"},
		{http.MethodGet, "/api/v1/lists/1"},
		{http.MethodPut, "/api/v1/lists/1"},
		{http.MethodDelete, "/api/v1/lists/1"},
	}

	for _, route := range protected {
		status, body := api.request(t, route.method, route.path, "", nil)
		if status != http.StatusUnauthorized {
			t.Errorf("%s %s without token returned %d, want 401", route.method, route.path, status)
		}
		if body["message"] != "No token provided" {
			t.Errorf("%s %s without token message = %v", route.method, route.path, body["message"])
		}

		status, body = api.request(t, route.method, route.path, "made-up-token", nil)
		if status != http.StatusUnauthorized || body["message"] != "Invalid token" {
			t.Errorf("%s %s with bogus token returned %d %v, want 401 Invalid token", route.method, route.path, status, body)
		}
	}
}

func TestRoutingFallbacks(t *testing.T) {
	api := setupAPI(t)

	// Unknown path is a JSON 404
	status, body := api.request(t, http.MethodGet, "/api/v1/nothing-here", "", nil)
	if status != http.StatusNotFound || body["message"] != "Not found" {
		t.Errorf("Unknown path returned %d %v, want 404 Not found", status, body)
	}

	// Known path with an unsupported verb is a JSON 405, even unauthenticated
	status, body = api.request(t, http.MethodPatch, "/api/v1/reports", "", nil)
	if status != http.StatusMethodNotAllowed || body["message"] != "Method not allowed" {
		t.Errorf("PATCH on reports returned %d %v, want 405 Method not allowed", status, body)
	}
	status, body = api.request(t, http.MethodDelete, "/api/v1/auth/register", "", nil)
	if status != http.StatusMethodNotAllowed || body["message"] != "Method not allowed" {
		t.Errorf("DELETE on register returned %d %v, want 405 Method not allowed", status, body)
	}

	// Preflight is answered before auth and routing
	req, err := http.NewRequest(http.MethodOptions, api.server.URL+"/api/v1/reports", nil)
	if err != nil {
		t.Fatalf("Failed to build preflight request: %v", err)
	}
	resp, err := api.server.Client().Do(req)
	if err != nil {
		t.Fatalf("Preflight request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Preflight returned %d, want 204", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("Preflight missing CORS origin header")
	}
	if resp.Header.Get("Access-Control-Allow-Methods") == "" {
		t.Errorf("Preflight missing CORS methods header")
	}

	// Security headers ride on every response
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("Missing X-Content-Type-Options header")
	}
}
