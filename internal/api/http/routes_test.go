package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/user-geo-service/internal/geo"
	"github.com/i474232898/user-geo-service/internal/store"
	"github.com/i474232898/user-geo-service/internal/user"
)

type scriptedResolver struct {
	res   geo.Resolution
	calls int
}

func (s *scriptedResolver) Resolve(_ context.Context, zipCode, country string) (geo.Resolution, error) {
	s.calls++
	return s.res, nil
}

func newTestApp(resolver *scriptedResolver) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: ErrorHandler,
	})

	svc := user.NewService(store.NewMemoryStore(), resolver, nil, nil, nil)
	RegisterRoutes(app, svc, nil)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	return doJSON(t, app, http.MethodPost, path, body)
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return resp
}

func decodeRecord(t *testing.T, resp *http.Response) user.Record {
	t.Helper()
	var rec user.Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return rec
}

// TestCreateValidation verifies that requests missing required fields are
// rejected before any resolution or store write happens.
func TestCreateValidation(t *testing.T) {
	resolver := &scriptedResolver{}
	app := newTestApp(resolver)

	resp := postJSON(t, app, "/users", map[string]string{"name": "Ana"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	resp = postJSON(t, app, "/users", map[string]string{"zipCode": "94105"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	if resolver.calls != 0 {
		t.Fatalf("expected no resolver calls, got %d", resolver.calls)
	}
}

// TestUserLifecycle walks a record through create, zip-change update, and
// delete, checking that derived geolocation follows the resolver output.
func TestUserLifecycle(t *testing.T) {
	resolver := &scriptedResolver{res: geo.Resolution{
		City: "San Francisco", Country: "US",
		Lat: 37.78, Lon: -122.39, Timezone: "America/Los_Angeles",
	}}
	app := newTestApp(resolver)

	resp := postJSON(t, app, "/users", map[string]string{"name": "Ana", "zipCode": "94105"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, resp.StatusCode)
	}
	created := decodeRecord(t, resp)
	if created.Latitude != 37.78 || created.Longitude != -122.39 || created.Timezone != "America/Los_Angeles" {
		t.Fatalf("created record does not match resolver output: %+v", created)
	}
	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	// Change the zip; the whole derived set must follow.
	resolver.res = geo.Resolution{
		City: "New York", Country: "US",
		Lat: 40.75, Lon: -73.99, Timezone: "America/New_York",
	}
	resp = doJSON(t, app, http.MethodPut, "/users/"+created.ID, map[string]string{"zipCode": "10001"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	updated := decodeRecord(t, resp)
	if updated.ZipCode != "10001" {
		t.Fatalf("expected zip 10001, got %q", updated.ZipCode)
	}
	if updated.Latitude != 40.75 || updated.Longitude != -73.99 || updated.Timezone != "America/New_York" {
		t.Fatalf("updated record does not match resolver output: %+v", updated)
	}
	if resolver.calls != 2 {
		t.Fatalf("expected exactly 2 resolver calls, got %d", resolver.calls)
	}

	// List shows the single record under its id.
	resp = doJSON(t, app, http.MethodGet, "/users", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	var all map[string]user.Record
	if err := json.NewDecoder(resp.Body).Decode(&all); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(all) != 1 || all[created.ID].ZipCode != "10001" {
		t.Fatalf("unexpected list contents: %+v", all)
	}

	// Delete, then the record is gone.
	resp = doJSON(t, app, http.MethodDelete, "/users/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	resp = doJSON(t, app, http.MethodGet, "/users/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

// TestUnknownIDReturns404 covers get, update, and delete against an id that
// was never created.
func TestUnknownIDReturns404(t *testing.T) {
	app := newTestApp(&scriptedResolver{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		var body any
		if method == http.MethodPut {
			body = map[string]string{"name": "Ana"}
		}
		resp := doJSON(t, app, method, "/users/no-such-id", body)
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("%s: expected status %d, got %d", method, http.StatusNotFound, resp.StatusCode)
		}
	}
}

// TestHealthEndpoint verifies the health route answers without a probe.
func TestHealthEndpoint(t *testing.T) {
	app := newTestApp(&scriptedResolver{})

	resp := doJSON(t, app, http.MethodGet, "/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
}
