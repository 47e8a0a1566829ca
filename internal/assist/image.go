package assist

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"math"
	"regexp"
	"strings"

	"golang.org/x/image/draw"
)

// maxImageDim is the bounding box images are downscaled into before the
// vision call, which caps the upstream payload size.
const maxImageDim = 512

var dataURLRe = regexp.MustCompile(`^data:image/(\w+);base64,`)

// ParseImage strips an optional data-URL prefix from a base64 image and
// decodes it. The declared image type, when present, determines the mime
// type; jpeg is assumed otherwise.
func ParseImage(s string) ([]byte, string, error) {
	imageType := "jpeg"
	if m := dataURLRe.FindStringSubmatch(s); m != nil {
		imageType = m[1]
		s = s[len(m[0]):]
	} else if i := strings.IndexByte(s, ','); i >= 0 {
		// Some clients send a prefix we don't recognize; drop it.
		s = s[i+1:]
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return data, "image/" + imageType, nil
}

// Downscale resizes the image to fit within maxImageDim on both axes,
// preserving aspect ratio. Images that already fit, or that fail to decode
// or re-encode, pass through unchanged with their original mime type.
func Downscale(data []byte, mimeType string) ([]byte, string) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, mimeType
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxImageDim && h <= maxImageDim {
		return data, mimeType
	}

	ratio := math.Min(float64(maxImageDim)/float64(w), float64(maxImageDim)/float64(h))
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*ratio), int(float64(h)*ratio)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	outMime := "image/jpeg"
	switch format {
	case "png":
		err = png.Encode(&buf, dst)
		outMime = "image/png"
	default:
		err = jpeg.Encode(&buf, dst, nil)
	}
	if err != nil {
		return data, mimeType
	}
	return buf.Bytes(), outMime
}
