package filemgr

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"tripmate/utils"

	"github.com/disintegration/imaging"
)

const (
	UserPicDir = "./static/userpic"
	ThumbDir   = "./static/userpic/thumb"

	thumbWidth = 300
	maxUpload  = 10 << 20
)

// MaxUploadSize is the multipart parse budget for image uploads.
func MaxUploadSize() int64 { return maxUpload }

// SaveImageWithThumb decodes the uploaded image, writes the original and a
// 300px-wide thumbnail, and returns the stored file name. The caller decides
// whether a failure aborts the request or degrades it.
func SaveImageWithThumb(file multipart.File, header *multipart.FileHeader, baseName string) (string, error) {
	if !utils.SupportedImageTypes[header.Header.Get("Content-Type")] {
		return "", fmt.Errorf("unsupported image type %q", header.Header.Get("Content-Type"))
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	if err := utils.EnsureDir(UserPicDir); err != nil {
		return "", err
	}
	if err := utils.EnsureDir(ThumbDir); err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	fileName := utils.SanitizeFilename(baseName) + ext

	if err := imaging.Save(img, filepath.Join(UserPicDir, fileName)); err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}

	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := imaging.Save(thumb, filepath.Join(ThumbDir, fileName)); err != nil {
		return "", fmt.Errorf("save thumbnail: %w", err)
	}

	return fileName, nil
}
