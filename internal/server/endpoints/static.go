package endpoints

import (
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/qpig0218/Rootplanner/internal/api"
	"github.com/qpig0218/Rootplanner/web"
)

const indexFile = "index.html"

// StaticEndpoint serves the frontend. Files come from Dir when present,
// otherwise from the embedded bundle. Unknown paths get index.html so
// client-side routes work. Dot-files are never served.
type StaticEndpoint struct {
	// Dir is the on-disk static directory; empty uses only the embedded bundle.
	Dir string
	// Embedded overrides the embedded bundle (tests).
	Embedded fs.FS
}

var _ api.Endpoint = (*StaticEndpoint)(nil)

func (e *StaticEndpoint) Route() (string, string, http.HandlerFunc) {
	// Use Go 1.22 wildcard pattern to catch all unmatched GET requests
	return "GET", "/{path...}", e.handler
}

func (e *StaticEndpoint) Command(_ func() string) *cobra.Command {
	return nil // No CLI command for static files
}

func (e *StaticEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if hidden(name) {
		name = ""
	}

	sources := e.sources()

	if name != "" {
		for _, fsys := range sources {
			if serveFile(w, r, fsys, name) {
				return
			}
		}
	}

	// File doesn't exist - serve index.html for SPA routing
	for _, fsys := range sources {
		if serveFile(w, r, fsys, indexFile) {
			return
		}
	}

	http.Error(w, "Frontend not available", http.StatusNotFound)
}

func (e *StaticEndpoint) sources() []fs.FS {
	var out []fs.FS
	if e.Dir != "" {
		out = append(out, os.DirFS(e.Dir))
	}
	if e.Embedded != nil {
		out = append(out, e.Embedded)
	} else if distFS, err := web.DistFS(); err == nil {
		out = append(out, distFS)
	}
	return out
}

// hidden reports whether any path segment is a dot-file or dot-directory.
func hidden(name string) bool {
	for _, seg := range strings.Split(name, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// serveFile writes name from fsys if it is a regular file.
func serveFile(w http.ResponseWriter, r *http.Request, fsys fs.FS, name string) bool {
	f, err := fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	content, ok := f.(io.ReadSeeker)
	if !ok {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), content)
	return true
}
