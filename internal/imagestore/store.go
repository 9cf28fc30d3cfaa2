package imagestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/gorilla/mux"
	_ "golang.org/x/image/bmp"  // register BMP decoder
	_ "golang.org/x/image/tiff" // register TIFF decoder
	_ "golang.org/x/image/webp" // register WebP decoder

	"github.com/VitalyVorobyev/imageannotation/internal/typeid"
)

const (
	defaultMaxUpload = 32 << 20 // 32MB
	thumbnailSize    = 256
)

// UploadResponse is returned from the upload endpoint.
type UploadResponse struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Handler stores uploaded images as PNG files in a directory and
// serves them back. It satisfies the same contract Client expects
// from an external store.
type Handler struct {
	dir       string
	maxUpload int64
}

// NewHandler creates a store rooted at dir. maxUpload bounds the
// request body accepted by Upload, in bytes; zero or negative picks
// the default.
func NewHandler(dir string, maxUpload int64) (*Handler, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handler{dir: dir, maxUpload: maxUpload}, nil
}

// ErrBadImage marks input that no registered decoder accepts.
var ErrBadImage = errors.New("invalid image")

// Save decodes the image and stores it under a fresh id. Any format
// with a registered decoder is accepted; storage is always PNG. A
// failed save leaves no file behind.
func (h *Handler) Save(name string, r io.Reader) (*UploadResponse, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	imageID := typeid.NewImageID()
	if err := h.writePNG(imageID, img); err != nil {
		return nil, fmt.Errorf("store image %s: %w", imageID, err)
	}

	bounds := img.Bounds()
	return &UploadResponse{
		ID:     imageID,
		URL:    "/images/" + imageID,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Name:   name,
	}, nil
}

// Upload handles POST /images (multipart form with "file" field).
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		http.Error(w, "file too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	resp, err := h.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, ErrBadImage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("store image", "error", err)
		http.Error(w, "failed to save image", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// Serve handles GET /images/{imageId}. With a non-empty "thumb" query
// parameter it returns a downscaled preview instead of the original.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	imageID := mux.Vars(r)["imageId"]
	if err := typeid.Validate(imageID, typeid.PrefixImage); err != nil {
		http.NotFound(w, r)
		return
	}

	if r.URL.Query().Get("thumb") != "" {
		h.serveThumbnail(w, r, h.path(imageID))
		return
	}

	// Ids are never reused, so stored files are immutable.
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeFile(w, r, h.path(imageID))
}

// Delete handles DELETE /images/{imageId}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	imageID := mux.Vars(r)["imageId"]
	if err := typeid.Validate(imageID, typeid.PrefixImage); err != nil {
		http.NotFound(w, r)
		return
	}

	if err := os.Remove(h.path(imageID)); err != nil {
		if os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		}
		slog.Error("delete image", "error", err, "id", imageID)
		http.Error(w, "failed to delete image", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) serveThumbnail(w http.ResponseWriter, r *http.Request, path string) {
	img, err := imaging.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	thumb := imaging.Thumbnail(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, thumb); err != nil {
		slog.Error("encode thumbnail", "error", err)
	}
}

func (h *Handler) writePNG(id string, img image.Image) error {
	path := h.path(id)
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, img); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}

func (h *Handler) path(id string) string {
	return filepath.Join(h.dir, id+".png")
}
