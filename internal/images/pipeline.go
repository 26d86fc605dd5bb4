// Package images is the ingestion pipeline for uploaded resource images:
// validate, resize into a bounding box, persist under a generated filename and
// hand back a relative URL. It also maps stored filenames back to byte
// streams.
package images

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const (
	// MaxFieldSize bounds the in-memory upload buffer.
	MaxFieldSize = 10 * 1024 * 1024
	// MaxFieldNameSize should be long enough for a uuid.
	MaxFieldNameSize = 100

	// ResourceImagesDir is the storage subdirectory for resource images.
	ResourceImagesDir = "resource-images"

	boundingBoxPx = 1024
	jpegQuality   = 85
)

// ErrBadKey marks an image key carrying path separators or traversal
// sequences.
var ErrBadKey = errors.New("invalid image key")

// Result is the client-visible outcome of one upload.
type Result struct {
	OK          bool   `json:"ok"`
	RelativeURL string `json:"relativeUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Pipeline writes resized JPEGs under <root>/resource-images. The directory
// is created once at construction, not per request.
type Pipeline struct {
	root string
}

func NewPipeline(storageRoot string) (*Pipeline, error) {
	if err := os.MkdirAll(filepath.Join(storageRoot, ResourceImagesDir), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create storage directory")
	}
	return &Pipeline{root: storageRoot}, nil
}

// Process decodes raw upload bytes, fits them into the bounding box without
// upscaling, re-encodes as JPEG and writes the file. Corrupt or unsupported
// input yields a failed Result and no file; a non-nil error means the write
// itself failed and is the server's fault. Encoding happens fully in memory
// before the single write, so no failure leaves a partial file behind.
func (p *Pipeline) Process(raw []byte) (Result, error) {
	src, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return Result{OK: false, Error: "failed to process images"}, nil
	}

	resized := imaging.Fit(src, boundingBoxPx, boundingBoxPx, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return Result{OK: false, Error: "failed to process images"}, nil
	}

	filename := newFilename()
	path := filepath.Join(p.root, ResourceImagesDir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return Result{}, errors.Wrapf(err, "failed to write image to %s", path)
	}

	return Result{OK: true, RelativeURL: filename}, nil
}

// Open maps a stored key back to its file. The key comes straight from the
// request path and is untrusted: traversal sequences and separators are
// rejected before any filesystem access.
func (p *Pipeline) Open(key string) (*os.File, error) {
	if !validKey(key) {
		return nil, ErrBadKey
	}
	return os.Open(filepath.Join(p.root, ResourceImagesDir, key))
}

func validKey(key string) bool {
	return key != "" &&
		!strings.Contains(key, "..") &&
		!strings.ContainsAny(key, `/\`)
}

// newFilename generates <millisecond-timestamp>-<random fraction>.jpg.
// Uploads landing in the same millisecond are disambiguated by the random
// suffix; the name is an opaque storage key, not a security boundary.
func newFilename() string {
	return fmt.Sprintf("%d-%010d.jpg", time.Now().UnixMilli(), rand.Int63n(1e10))
}
