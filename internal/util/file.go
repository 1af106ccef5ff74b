package util

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ValidateMimeType sniffs the first 512 bytes and checks the detected MIME
// type against the allowed prefixes or full types, e.g. "image/",
// "application/pdf".
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

var AllowedUploadExtensions = []string{".jpeg", ".jpg", ".png", ".pdf", ".doc", ".docx"}

func IsAllowedUploadExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// NewAssetName builds a collision-free object name preserving the original
// extension.
func NewAssetName(originalName string) string {
	return uuid.New().String() + strings.ToLower(filepath.Ext(originalName))
}

// driveURLPattern accepts the two Google Drive share-link forms used for
// external video submaterials.
var driveURLPattern = regexp.MustCompile(`^https://(drive\.google\.com/file/d/|drive\.google\.com/open\?id=)[a-zA-Z0-9_-]+`)

// IsExternalVideoURL reports whether ref points at the recognized external
// file-hosting service rather than an asset this system stores itself.
func IsExternalVideoURL(ref string) bool {
	return driveURLPattern.MatchString(ref)
}
