package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/foodgram/backend/pkg/errors"
	"github.com/google/uuid"
)

// Image is a decoded upload
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
}

// DecodeDataURI parses a "data:<mime>;base64,<payload>" string into an image.
// field names the request field in returned validation errors.
func DecodeDataURI(field, value string, maxSize int) (*Image, error) {
	invalid := errors.Invalid.Explain("validation error").
		WithField("invalid_image", field, "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")

	if strings.TrimSpace(value) == "" {
		return nil, errors.Invalid.Explain("validation error").
			WithField("required", field, "This field is required.")
	}

	meta, payload, ok := strings.Cut(value, ",")
	if !ok || !strings.HasPrefix(meta, "data:") || !strings.HasSuffix(meta, ";base64") {
		return nil, invalid
	}
	contentType := strings.TrimSuffix(strings.TrimPrefix(meta, "data:"), ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, invalid
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid.Wrap(err)
	}
	if len(data) == 0 {
		return nil, invalid
	}
	if maxSize > 0 && len(data) > maxSize {
		return nil, errors.Invalid.Explain("validation error").
			WithField("max_size", field, fmt.Sprintf("Ensure the image is no larger than %d bytes.", maxSize))
	}
	// the payload itself must look like an image, whatever the declared type
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, invalid
	}

	return &Image{Data: data, ContentType: contentType, Ext: extension(contentType)}, nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	}
	if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
		return exts[0]
	}
	if _, sub, ok := strings.Cut(contentType, "/"); ok {
		return "." + sub
	}
	return ""
}

// NewKey builds a unique storage key for an image under prefix
func NewKey(prefix string, img *Image) string {
	return fmt.Sprintf("%s/%s%s", strings.TrimSuffix(prefix, "/"), uuid.NewString(), img.Ext)
}
