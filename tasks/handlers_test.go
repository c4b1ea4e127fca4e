package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/user/tareas-go/auth"
	"github.com/user/tareas-go/config"
)

// newAPIServer wires the task handlers behind the real JWT middleware, the
// way main mounts them.
func newAPIServer(t *testing.T) (*httptest.Server, *auth.TokenIssuer, Service) {
	t.Helper()

	cfg := config.AuthConfig{
		JWTSecret:            "test-secret",
		AccessTokenDuration:  time.Hour,
		RefreshTokenDuration: 24 * time.Hour,
	}
	issuer := auth.NewTokenIssuer(cfg)
	svc := NewMemoryService()
	handlers := NewHandlers(svc)

	r := chi.NewRouter()
	r.Route("/api/v1/tasks", func(r chi.Router) {
		r.Use(auth.JWTMiddleware(&cfg))
		handlers.RegisterRoutes(r)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, issuer, svc
}

func bearerFor(t *testing.T, issuer *auth.TokenIssuer, userID int) string {
	t.Helper()
	tokens, err := issuer.IssueTokens(userID)
	if err != nil {
		t.Fatalf("IssueTokens: %v", err)
	}
	return "Bearer " + tokens.AccessToken
}

func doJSON(t *testing.T, method, url, bearer string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", bearer)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func TestTaskAPIRequiresAuth(t *testing.T) {
	srv, _, _ := newAPIServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/tasks")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestTaskAPICRUD(t *testing.T) {
	srv, issuer, _ := newAPIServer(t)
	bearer := bearerFor(t, issuer, 1)

	// Create
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", bearer, TaskRequest{
		Title:    "Buy milk",
		Priority: "Alta",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}
	var created Task
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}
	resp.Body.Close()
	if created.OwnerID != 1 {
		t.Fatalf("created OwnerID = %d, want 1", created.OwnerID)
	}

	// List contains exactly the one task
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks", bearer, nil)
	var list TaskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if list.Total != 1 || list.Tasks[0].Title != "Buy milk" {
		t.Fatalf("unexpected list: %+v", list)
	}

	// Update
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/v1/tasks/%d", srv.URL, created.ID), bearer, TaskRequest{
		Title:       "Buy milk",
		Description: "two liters",
		Priority:    "Media",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d, want 200", resp.StatusCode)
	}
	var updated Task
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		t.Fatalf("decode updated task: %v", err)
	}
	resp.Body.Close()
	if updated.Priority != "Media" || updated.Description != "two liters" {
		t.Fatalf("update not applied: %+v", updated)
	}

	// Delete
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/tasks/%d", srv.URL, created.ID), bearer, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	// Get after delete
	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/tasks/%d", srv.URL, created.ID), bearer, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestTaskAPIOwnershipStatusCodes(t *testing.T) {
	srv, issuer, svc := newAPIServer(t)

	bobTask, err := svc.Create(context.Background(), 2, TaskRequest{Title: "bob's"})
	if err != nil {
		t.Fatalf("seed task: %v", err)
	}

	aliceBearer := bearerFor(t, issuer, 1)
	url := fmt.Sprintf("%s/api/v1/tasks/%d", srv.URL, bobTask.ID)

	for _, tt := range []struct {
		method string
		body   interface{}
	}{
		{http.MethodGet, nil},
		{http.MethodPut, TaskRequest{Title: "hijack"}},
		{http.MethodDelete, nil},
	} {
		resp := doJSON(t, tt.method, url, aliceBearer, tt.body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("%s foreign task status = %d, want 403", tt.method, resp.StatusCode)
		}
	}
}

func TestTaskAPISearchParam(t *testing.T) {
	srv, issuer, svc := newAPIServer(t)
	bearer := bearerFor(t, issuer, 1)

	if _, err := svc.Create(context.Background(), 1, TaskRequest{Title: "Tarea secreta de pruebas"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := svc.Create(context.Background(), 1, TaskRequest{Title: "otra cosa"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/v1/tasks?search=secreta", bearer, nil)
	var list TaskListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	resp.Body.Close()
	if list.Total != 1 || list.Tasks[0].Title != "Tarea secreta de pruebas" {
		t.Fatalf("unexpected search result: %+v", list)
	}

	// Missing title on create surfaces as a 400.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/v1/tasks", bearer, TaskRequest{Description: "no title"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("create without title status = %d, want 400", resp.StatusCode)
	}
}
