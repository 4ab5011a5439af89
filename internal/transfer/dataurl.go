package transfer

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/thenoetrevino/tasknote/internal/models"
)

const dataURLPrefix = "data:"

// EncodeDataURL renders img as data:<mime>;base64,<payload>. A missing MIME
// type is sniffed from the bytes.
func EncodeDataURL(img models.Image) string {
	mime := img.MIMEType
	if mime == "" {
		mime = mimetype.Detect(img.Data).String()
	}
	return dataURLPrefix + mime + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DecodeDataURL parses a base64 data URL whose media type is image/*. The
// decoded bytes must also sniff as an image; the declared type is kept.
func DecodeDataURL(s string) (models.Image, error) {
	if !strings.HasPrefix(s, dataURLPrefix) {
		return models.Image{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidImage)
	}

	meta, payload, ok := strings.Cut(s[len(dataURLPrefix):], ",")
	if !ok {
		return models.Image{}, fmt.Errorf("%w: missing payload", ErrInvalidImage)
	}

	params := strings.Split(meta, ";")
	mime := strings.ToLower(strings.TrimSpace(params[0]))
	if !strings.HasPrefix(mime, "image/") || len(mime) == len("image/") {
		return models.Image{}, fmt.Errorf("%w: media type %q is not an image", ErrInvalidImage, params[0])
	}
	if len(params) < 2 || !strings.EqualFold(params[len(params)-1], "base64") {
		return models.Image{}, fmt.Errorf("%w: payload is not base64", ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return models.Image{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return models.Image{}, fmt.Errorf("%w: empty payload", ErrInvalidImage)
	}
	if detected := mimetype.Detect(data); !strings.HasPrefix(detected.String(), "image/") {
		return models.Image{}, fmt.Errorf("%w: payload sniffs as %s", ErrInvalidImage, detected)
	}

	return models.Image{MIMEType: mime, Data: data}, nil
}
