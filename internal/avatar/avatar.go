// Package avatar turns arbitrary uploaded image bytes into stored avatar
// files.  Uploads are decoded, scaled onto a fixed 250×250 canvas,
// re-encoded as PNG and written under a collision-resistant name.
package avatar

import (
	"bytes"
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

// Size is the edge length of the square avatar canvas.
const Size = 250

// ErrDecode is wrapped around any failure to interpret the uploaded bytes
// as an image; handlers map it to a 400 since the input is caller-supplied.
var ErrDecode = fmt.Errorf("cannot decode image")

// Process decodes uploaded bytes and resizes them to the avatar canvas.
func Process(data []byte) (*image.NRGBA, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return imaging.Resize(img, Size, Size, imaging.Lanczos), nil
}

// Storage writes processed avatars into a directory served as static files.
type Storage struct {
	Dir        string // filesystem directory for avatar files
	PublicPath string // URL prefix under which Dir is served, e.g. "/avatars"
}

// NewStorage ensures the target directory exists and returns a Storage.
func NewStorage(dir, publicPath string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Storage{Dir: dir, PublicPath: publicPath}, nil
}

// Save writes the image for the given user and returns its public URL.
// The filename embeds a fresh UUID so concurrent uploads never collide and
// an old avatar URL keeps resolving until the file is cleaned up.
func (s *Storage) Save(userID uint64, img *image.NRGBA) (string, error) {
	name := fmt.Sprintf("%d-%s.png", userID, uuid.NewString())
	if err := imaging.Save(img, filepath.Join(s.Dir, name)); err != nil {
		return "", err
	}
	return s.PublicPath + "/" + name, nil
}
