package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PagesHandler serves the browser application. With a static directory it
// serves files and falls back to index.html; without one it answers a small
// JSON stub naming the page.
type PagesHandler struct {
	dir string
	fs  http.Handler
}

func NewPagesHandler(staticDir string) *PagesHandler {
	h := &PagesHandler{dir: staticDir}
	if staticDir != "" {
		h.fs = http.FileServer(http.Dir(staticDir))
	}
	return h
}

func (h *PagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	if h.fs == nil {
		writeJSON(w, http.StatusOK, map[string]string{"page": path.Clean(r.URL.Path)})
		return
	}

	name := filepath.Join(h.dir, filepath.FromSlash(path.Clean(r.URL.Path)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		h.fs.ServeHTTP(w, r)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.dir, "index.html"))
}
