package media

import "bytes"

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
	MimeWebP = "image/webp"
)

var (
	jpegMagic = []byte{0xFF, 0xD8, 0xFF}
	pngMagic  = []byte{0x89, 0x50, 0x4E, 0x47}
	gifMagic  = []byte("GIF8")
	riffMagic = []byte("RIFF")
	webpMagic = []byte("WEBP")
)

// DetectImageType sniffs the image format from the payload's leading
// bytes. The upstream store does not reliably report a content type on
// raw downloads, so the proxy needs this to set an accurate response
// type. Unrecognized or too-short payloads fall back to JPEG.
func DetectImageType(data []byte) string {
	if len(data) < 4 {
		return MimeJPEG
	}
	switch {
	case bytes.HasPrefix(data, jpegMagic):
		return MimeJPEG
	case bytes.HasPrefix(data, pngMagic):
		return MimePNG
	case bytes.HasPrefix(data, gifMagic):
		return MimeGIF
	case len(data) >= 12 && bytes.HasPrefix(data, riffMagic) && bytes.Equal(data[8:12], webpMagic):
		return MimeWebP
	default:
		return MimeJPEG
	}
}
