package imageprocessing

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"

	xdraw "golang.org/x/image/draw"
)

const jpegQuality = 90

// fitWithin returns the largest size with the aspect ratio of width x height whose long edge is at
// most maxEdge. Sizes already within the limit are returned unchanged.
func fitWithin(width, height, maxEdge int) (int, int) {
	if width <= maxEdge && height <= maxEdge {
		return width, height
	}
	aspect := float64(width) / float64(height)
	if width >= height {
		return maxEdge, max(1, int(float64(maxEdge)/aspect))
	}
	return max(1, int(float64(maxEdge)*aspect)), maxEdge
}

// needsDownscale reports whether raw decodes to an image whose long edge exceeds maxEdge.
func needsDownscale(raw []byte, maxEdge int) bool {
	if maxEdge <= 0 {
		return false
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return false
	}
	return cfg.Width > maxEdge || cfg.Height > maxEdge
}

// downscale shrinks raw so that its long edge is maxEdge. JPEG input stays JPEG, everything else
// becomes PNG. It returns the encoded bytes and their media type.
func downscale(raw []byte, maxEdge int) ([]byte, string, error) {
	if err := checkDimensions(raw); err != nil {
		return nil, "", err
	}
	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxEdge)
	slog.Debug("downscaling image",
		"format", format,
		"original_width", bounds.Dx(),
		"original_height", bounds.Dy(),
		"scaled_width", width,
		"scaled_height", height)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	var buf bytes.Buffer
	if format == "jpeg" {
		if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, "", fmt.Errorf("failed to encode scaled JPEG image: %w", err)
		}
		return buf.Bytes(), MediaTypeJPEG, nil
	}
	if err := png.Encode(&buf, dst); err != nil {
		return nil, "", fmt.Errorf("failed to encode scaled PNG image: %w", err)
	}
	return buf.Bytes(), MediaTypePNG, nil
}
