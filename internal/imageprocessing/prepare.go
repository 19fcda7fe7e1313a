// Package imageprocessing turns an inbound base64 image into a payload the vision API accepts.
//
// Preparation never rejects input: anything that cannot be recognised is forwarded unchanged as
// image/jpeg and the upstream API decides.
package imageprocessing

import (
	"bytes"
	"encoding/base64"
	"image"
	"log/slog"
	"strings"
)

const (
	MediaTypeJPEG = "image/jpeg"
	MediaTypePNG  = "image/png"
	MediaTypeGIF  = "image/gif"
	MediaTypeWEBP = "image/webp"
)

// formats the vision API takes as-is, keyed by image.DecodeConfig format name
var passthroughFormats = map[string]string{
	"jpeg": MediaTypeJPEG,
	"png":  MediaTypePNG,
	"gif":  MediaTypeGIF,
	"webp": MediaTypeWEBP,
}

// formats that are rasterised to PNG first
var convertFormats = map[string]bool{
	"bmp":  true,
	"tiff": true,
}

// Payload is an image ready to be embedded in a vision request.
type Payload struct {
	MediaType string
	// Data is standard base64.
	Data string
	// Raw holds the decoded bytes of Data, nil when Data could not be decoded.
	Raw       []byte
	Converted bool
}

// Options tune Prepare.
type Options struct {
	// MaxEdge downscales images whose width or height exceeds it, zero disables scaling.
	MaxEdge int
}

// Prepare inspects a base64 image (optionally a data: URL) and returns its payload.
func Prepare(imageB64 string) Payload {
	return PrepareWith(imageB64, Options{})
}

func PrepareWith(imageB64 string, opts Options) Payload {
	payload := detect(imageB64)
	if payload.Raw == nil || !needsDownscale(payload.Raw, opts.MaxEdge) {
		return payload
	}

	out, mediaType, err := downscale(payload.Raw, opts.MaxEdge)
	if err != nil {
		slog.Warn("image downscaling failed; forwarding unscaled", "error", err)
		return payload
	}
	slog.Info("downscaled image", "max_edge", opts.MaxEdge, "input_size_bytes", len(payload.Raw), "output_size_bytes", len(out))
	return Payload{
		MediaType: mediaType,
		Data:      base64.StdEncoding.EncodeToString(out),
		Raw:       out,
		Converted: true,
	}
}

func detect(imageB64 string) Payload {
	fallback := Payload{MediaType: MediaTypeJPEG, Data: imageB64}

	data, hint := stripDataURL(imageB64)
	raw, data, err := decodeBase64(data)
	if err != nil || len(raw) == 0 {
		slog.Debug("image is not decodable base64; forwarding unchanged", "error", err)
		return fallback
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(raw)); err == nil {
		if mediaType, ok := passthroughFormats[format]; ok {
			return Payload{MediaType: mediaType, Data: data, Raw: raw}
		}
		if convertFormats[format] {
			return convert(raw, format, fallback)
		}
	}
	if isSVGData(raw) {
		return convert(raw, "svg", fallback)
	}

	if mediaType, ok := mediaTypeFromHint(hint); ok {
		return Payload{MediaType: mediaType, Data: data, Raw: raw}
	}
	slog.Debug("unrecognised image format; forwarding as jpeg", "size_bytes", len(raw))
	return Payload{MediaType: MediaTypeJPEG, Data: data, Raw: raw}
}

func convert(raw []byte, format string, fallback Payload) Payload {
	out, err := toPNG(raw)
	if err != nil {
		slog.Warn("image conversion failed; forwarding unchanged", "format", format, "error", err)
		return fallback
	}
	slog.Info("converted image to png", "format", format, "input_size_bytes", len(raw), "output_size_bytes", len(out))
	return Payload{
		MediaType: MediaTypePNG,
		Data:      base64.StdEncoding.EncodeToString(out),
		Raw:       out,
		Converted: true,
	}
}

// stripDataURL removes a "data:<mime>;base64," prefix and returns the mime hint.
func stripDataURL(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(strings.ToLower(s), "data:") {
		return s, ""
	}
	idx := strings.IndexByte(s, ',')
	if idx < 0 {
		return s, ""
	}
	meta := s[len("data:"):idx]
	if semi := strings.IndexByte(meta, ';'); semi >= 0 {
		meta = meta[:semi]
	}
	return s[idx+1:], strings.ToLower(strings.TrimSpace(meta))
}

// decodeBase64 accepts standard, unpadded and URL-safe base64 and returns the bytes together
// with their standard encoding.
func decodeBase64(s string) ([]byte, string, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, s, nil
	}
	for _, enc := range []*base64.Encoding{base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, base64.StdEncoding.EncodeToString(b), nil
		}
	}
	_, err := base64.StdEncoding.DecodeString(s)
	return nil, s, err
}

func mediaTypeFromHint(hint string) (string, bool) {
	for _, mediaType := range passthroughFormats {
		if hint == mediaType {
			return mediaType, true
		}
	}
	return "", false
}
