package api

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StaticAssets serves the front end from a directory. Every file is hashed
// once at startup; the hash is sent as the ETag, and a request carrying a
// matching ?v= version gets immutable cache headers.
type StaticAssets struct {
	hashes map[string]string // URL path -> content hash
	dir    string
}

// NewStaticAssets creates a StaticAssets manager that scans the given directory.
// A missing directory is logged and serves 404s.
func NewStaticAssets(dir string, logger *slog.Logger) *StaticAssets {
	sa := &StaticAssets{
		hashes: make(map[string]string),
		dir:    dir,
	}
	sa.scan(logger)
	return sa
}

// Handler returns an HTTP handler that serves static files with cache headers.
// "/" serves index.html. Directory listings are never produced.
func (sa *StaticAssets) Handler() http.Handler {
	fileServer := http.FileServer(noListingFS{http.Dir(sa.dir)})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		urlPath := path.Clean("/" + r.URL.Path)
		if strings.HasSuffix(urlPath, "/") {
			urlPath += "index.html"
		}

		hash, exists := sa.hashes[urlPath]
		if exists {
			w.Header().Set("ETag", `"`+hash[:32]+`"`)
		}

		switch v := r.URL.Query().Get("v"); {
		case v != "" && exists && strings.HasPrefix(hash, v):
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		case v != "":
			// Hash mismatch - serve but don't cache aggressively
			w.Header().Set("Cache-Control", "public, max-age=3600")
		case strings.HasSuffix(urlPath, ".html"):
			w.Header().Set("Cache-Control", "no-cache")
		default:
			w.Header().Set("Cache-Control", "public, max-age=300")
		}

		fileServer.ServeHTTP(w, r)
	})
}

func (sa *StaticAssets) scan(logger *slog.Logger) {
	hashes := make(map[string]string)

	err := filepath.WalkDir(sa.dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			logger.Warn("failed to hash static file", "path", p, "error", err)
			return nil
		}

		rel, err := filepath.Rel(sa.dir, p)
		if err != nil {
			return nil
		}
		h := sha256.Sum256(data)
		hashes["/"+filepath.ToSlash(rel)] = hex.EncodeToString(h[:])
		return nil
	})
	if err != nil {
		logger.Warn("scanning static assets", "dir", sa.dir, "error", err)
	}

	sa.hashes = hashes
	logger.Info("static assets scanned", slog.String("dir", sa.dir), slog.Int("files", len(hashes)))
}

// noListingFS hides directories that have no index.html.
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		index, err := n.fs.Open(strings.TrimSuffix(name, "/") + "/index.html")
		if err != nil {
			_ = f.Close()
			return nil, os.ErrNotExist
		}
		_ = index.Close()
	}
	return f, nil
}
