package extract

import (
	"encoding/base64"
	"errors"
	"fmt"

	"sgpa-scan/api/internal/util"
)

var ErrEmptyImage = errors.New("image is empty")

// Image is an upload ready to be sent to a candidate.
type Image struct {
	Data     []byte
	MIMEType string
}

// NewImage wraps raw bytes. An empty mime is sniffed from the bytes and falls
// back to a generic image type; it is never rejected.
func NewImage(data []byte, mime string) Image {
	return Image{Data: data, MIMEType: util.PickMIME(mime, "", data)}
}

// DecodeImage accepts plain base64 or a data: URL; the data: prefix is stripped
// and its MIME used when mime is empty.
func DecodeImage(encoded, mime string) (Image, error) {
	data, hint, err := util.DecodeBase64MaybeDataURL(encoded)
	if err != nil {
		return Image{}, fmt.Errorf("bad base64: %w", err)
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	return Image{Data: data, MIMEType: util.PickMIME(mime, hint, data)}, nil
}

// Base64 returns the transport encoding without any data: prefix.
func (i Image) Base64() string {
	return base64.StdEncoding.EncodeToString(i.Data)
}

func (i Image) DataURL() string {
	return util.MakeDataURL(i.MIMEType, i.Base64())
}

// Hash identifies the image content (used as cache key).
func (i Image) Hash() string {
	return util.SHA256Hex(i.Data)
}
