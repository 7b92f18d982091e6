package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lespetitsreves/lprds/internal/config"
)

type uploadResult struct {
	Name  string `json:"name"`
	URL   string `json:"url,omitempty"`
	Error string `json:"error,omitempty"`
}

// POST /uploads — multipart "files". Each file is attempted independently:
// some may succeed while others fail, and the response reports both. The
// client patches the returned URLs onto the report's media list.
func UploadMedia(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeErr(w, http.StatusBadRequest, "no files")
		return
	}
	if err := os.MkdirAll(config.MediaDir(), 0o755); err != nil {
		serviceErr(w, err)
		return
	}

	results := make([]uploadResult, 0, len(files))
	for _, fh := range files {
		res := uploadResult{Name: fh.Filename}
		url, err := saveUpload(fh)
		if err != nil {
			res.Error = err.Error()
		} else {
			res.URL = url
		}
		results = append(results, res)
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": results})
}

// Seam for tests exercising the per-file failure path.
var openUpload = func(fh *multipart.FileHeader) (multipart.File, error) {
	return fh.Open()
}

func saveUpload(fh *multipart.FileHeader) (string, error) {
	src, err := openUpload(fh)
	if err != nil {
		return "", err
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	stored := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(config.MediaDir(), stored))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", err
	}
	return config.MediaBaseURL() + "/" + stored, nil
}
