package accounts

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	MaxAvatarSize = 1 << 20

	msgInvalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	msgImageTooBig  = "File too large. Size should not exceed 1 MB."
	msgEmptyFile    = "The submitted file is empty."
)

// FileStore keeps uploaded files and hands out the URL they are served from.
type FileStore interface {
	Save(ctx context.Context, name string, content []byte) (string, error)
	// Remove deletes the file behind url. Unknown urls are ignored.
	Remove(ctx context.Context, url string)
}

// DiskStore writes files below a folder and serves them under baseURL.
type DiskStore struct {
	folder  string
	baseURL string
}

func NewDiskStore(folder, baseURL string) *DiskStore {
	return &DiskStore{folder: folder, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (d *DiskStore) Folder() string {
	return d.folder
}

func (d *DiskStore) Save(_ context.Context, name string, content []byte) (string, error) {
	target := filepath.Join(d.folder, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", errors.Wrap(err, "DiskStore.Save mkdir")
	}
	if err := os.WriteFile(target, content, 0o644); err != nil {
		return "", errors.Wrap(err, "DiskStore.Save write")
	}
	return d.baseURL + "/" + path.Clean(name), nil
}

func (d *DiskStore) Remove(_ context.Context, fileURL string) {
	name, ok := strings.CutPrefix(fileURL, d.baseURL+"/")
	if !ok {
		return
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	clean := path.Clean("/" + name)[1:]
	if clean == "" {
		return
	}
	if err := os.Remove(filepath.Join(d.folder, filepath.FromSlash(clean))); err != nil && !os.IsNotExist(err) {
		log.Err(err).Str("file", clean).Msg("DiskStore.Remove")
	}
}

func avatarName(userID, ext string) string {
	return path.Join("avatars", userID, utils.UniqueID(11)+ext)
}

// readAvatar reads at most MaxAvatarSize bytes and sniffs the image type.
func readAvatar(content io.Reader) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(content, MaxAvatarSize+1))
	if err != nil {
		return nil, "", errors.Wrap(err, "readAvatar")
	}
	if len(data) > MaxAvatarSize {
		return nil, "", apperrors.NewValidationError("avatar", msgImageTooBig)
	}
	switch http.DetectContentType(data) {
	case "image/png":
		return data, ".png", nil
	case "image/jpeg":
		return data, ".jpg", nil
	}
	if len(data) == 0 {
		return nil, "", apperrors.NewValidationError("avatar", msgEmptyFile)
	}
	return nil, "", apperrors.NewValidationError("avatar", msgInvalidImage)
}
