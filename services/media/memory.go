package media

import (
	"context"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// QRRoutePrefix is where MemoryUploader images are served.
const QRRoutePrefix = "/media/qr/"

// DefaultMaxImages bounds a MemoryUploader when no size is given.
const DefaultMaxImages = 1024

// MemoryUploader keeps the most recently uploaded images in process memory
// and serves them through the HTTP layer. It is the fallback when Cloudinary
// is not configured. Older images are evicted once maxImages is reached.
type MemoryUploader struct {
	baseURL string
	files   *lru.Cache[string, []byte]
}

func NewMemoryUploader(baseURL string, maxImages int) *MemoryUploader {
	if maxImages <= 0 {
		maxImages = DefaultMaxImages
	}
	files, _ := lru.New[string, []byte](maxImages)
	return &MemoryUploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		files:   files,
	}
}

func (u *MemoryUploader) Upload(_ context.Context, name string, png []byte) (string, error) {
	file := name + ".png"
	u.files.Add(file, append([]byte(nil), png...))
	return u.baseURL + QRRoutePrefix + file, nil
}

// Get returns a stored image by file name.
func (u *MemoryUploader) Get(file string) ([]byte, bool) {
	return u.files.Get(file)
}

// Len returns the number of images held.
func (u *MemoryUploader) Len() int {
	return u.files.Len()
}
