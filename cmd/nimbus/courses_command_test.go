package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newCatalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v3/Courses/1269" || r.Header.Get("x-api-key") != "key" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode([]map[string]string{
			{"subjectCode": "CS", "catalogNumber": "246", "description": "Object-Oriented Software Development"},
			{"subjectCode": "STAT", "catalogNumber": "230", "title": "Probability"},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCoursesLookup(t *testing.T) {
	server := newCatalogServer(t)
	env := setupCLITestEnv(t)
	env.cfg.Catalog.APIKey = "key"
	env.cfg.Catalog.BaseURL = server.URL + "/v3"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"courses", "lookup", "--term", "1269", "cs 246", "STAT230", "PHYS999"}, env.configPath)
	if err != nil {
		t.Fatalf("courses lookup: %v", err)
	}
	requireContains(t, out, "CS246")
	requireContains(t, out, "Object-Oriented Software Development")
	requireContains(t, out, "Probability")
	requireContains(t, out, "PHYS999 is not offered in term 1269")
}

func TestCoursesLookupDefaultsToConfiguredCourses(t *testing.T) {
	server := newCatalogServer(t)
	env := setupCLITestEnv(t)
	env.cfg.Catalog.APIKey = "key"
	env.cfg.Catalog.BaseURL = server.URL + "/v3"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"courses", "lookup", "--term", "1269", "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("courses lookup: %v", err)
	}
	var payload struct {
		Term    string            `json:"term"`
		Courses map[string]string `json:"courses"`
		Missing []string          `json:"missing"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if payload.Term != "1269" {
		t.Fatalf("term = %q", payload.Term)
	}
	if _, ok := payload.Courses["CS246"]; !ok {
		t.Fatalf("expected CS246 in %v", payload.Courses)
	}
	if len(payload.Missing) != 1 || payload.Missing[0] != "MATH239" {
		t.Fatalf("missing = %v, want [MATH239]", payload.Missing)
	}
}

func TestCoursesLookupRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"courses", "lookup", "CS246"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "api key") {
		t.Fatalf("expected api key error, got %v", err)
	}
}

func TestCoursesList(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"courses", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("courses list: %v", err)
	}
	requireContains(t, out, "MATH239")
	requireContains(t, out, env.cfg.CourseDir(env.cfg.Courses[0]))
}

func TestNotifyTest(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.Header.Get("Title") != "nimbus - Test" {
			t.Errorf("unexpected title %q", r.Header.Get("Title"))
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"notify", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "Notifications disabled")

	env.cfg.Notifications.NtfyTopic = server.URL + "/nimbus"
	writeTestConfig(t, env.configPath, env.cfg)
	out, _, err = runCLI(t, []string{"notify", "test"}, env.configPath)
	if err != nil {
		t.Fatalf("notify test: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if hits.Load() != 1 {
		t.Fatalf("expected one ntfy request, got %d", hits.Load())
	}
}
