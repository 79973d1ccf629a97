package endpoints

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func TestStaticEndpoint(t *testing.T) {
	dir := t.TempDir()
	mustWrite(t, filepath.Join(dir, "index.html"), "<html>disk index</html>")
	mustWrite(t, filepath.Join(dir, "app.js"), "console.log('disk')")
	mustWrite(t, filepath.Join(dir, ".env"), "AZURE_OPENAI_API_KEY=secret")
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	mustWrite(t, filepath.Join(dir, ".git", "config"), "[core]")

	embedded := fstest.MapFS{
		"index.html": {Data: []byte("<html>embedded index</html>")},
		"logo.svg":   {Data: []byte("<svg></svg>")},
	}
	e := &StaticEndpoint{Dir: dir, Embedded: embedded}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"root serves index", "/", "disk index"},
		{"index.html served without redirect", "/index.html", "disk index"},
		{"existing file", "/app.js", "console.log('disk')"},
		{"unknown path falls back to index", "/visits/today", "disk index"},
		{"unknown api path falls back to index", "/api/unknown", "disk index"},
		{"dot-file hidden", "/.env", "disk index"},
		{"dot-directory hidden", "/.git/config", "disk index"},
		{"traversal cleaned", "/../../etc/passwd", "disk index"},
		{"embedded fills gaps", "/logo.svg", "<svg></svg>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, e, tt.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}
			body := rec.Body.String()
			if !strings.Contains(body, tt.want) {
				t.Errorf("body = %q, want it to contain %q", body, tt.want)
			}
			if strings.Contains(body, "secret") {
				t.Error("dot-file content leaked")
			}
		})
	}
}

func TestStaticEndpoint_EmbeddedFallback(t *testing.T) {
	e := &StaticEndpoint{
		Dir:      t.TempDir(), // empty
		Embedded: fstest.MapFS{"index.html": {Data: []byte("<html>embedded index</html>")}},
	}

	rec := get(t, e, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "embedded index") {
		t.Errorf("body = %q", rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestStaticEndpoint_NoFrontend(t *testing.T) {
	e := &StaticEndpoint{Dir: t.TempDir(), Embedded: fstest.MapFS{}}

	rec := get(t, e, "/anything")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestStaticEndpoint_BundledFrontend(t *testing.T) {
	e := &StaticEndpoint{}

	rec := get(t, e, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "/api/schedule") {
		t.Error("bundled frontend does not post to /api/schedule")
	}
}

func TestHidden(t *testing.T) {
	tests := map[string]bool{
		"":                false,
		"index.html":      false,
		"assets/app.js":   false,
		".env":            true,
		".git/HEAD":       true,
		"assets/.secrets": true,
		"a.b/c.d":         false,
	}
	for name, want := range tests {
		if got := hidden(name); got != want {
			t.Errorf("hidden(%q) = %v, want %v", name, got, want)
		}
	}
}

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
