package server

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"os"

	"github.com/go-pkgz/lgr"
)

// rssHandler serves the feed file produced by the last run, 503 until it exists
func (s *Server) rssHandler(w http.ResponseWriter, r *http.Request) {
	info, err := os.Stat(s.feedPath)
	if errors.Is(err, fs.ErrNotExist) {
		w.Header().Set("Retry-After", "60")
		RenderError(w, r, errors.New("feed is not generated yet"), http.StatusServiceUnavailable)
		return
	}
	if err != nil {
		lgr.Printf("[ERROR] failed to stat feed %s: %v", s.feedPath, err)
		RenderError(w, r, errors.New("can't read feed"), http.StatusInternalServerError)
		return
	}

	// the writer replaces the file with a rename, so a single read sees a complete document
	data, err := os.ReadFile(s.feedPath)
	if err != nil {
		lgr.Printf("[ERROR] failed to read feed %s: %v", s.feedPath, err)
		RenderError(w, r, errors.New("can't read feed"), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	http.ServeContent(w, r, "rss.xml", info.ModTime(), bytes.NewReader(data))
}
