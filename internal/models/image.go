package models

import "time"

const ImageTypeJPEG = "jpg"

// RenderedImage is an encoded chart ready to be written or served
type RenderedImage struct {
	Data      []byte
	ImageType string
	// Expires is a hint assigned by the caller, zero when unknown
	Expires time.Time
}

// ContentType maps the image type to a MIME type
func (r *RenderedImage) ContentType() string {
	switch r.ImageType {
	case ImageTypeJPEG:
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
