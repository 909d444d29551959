package artwork

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"
)

// Downscale makes sure artwork is a jpeg or png no larger than maxSize on
// either edge, keeping the aspect ratio. Pictures that already fit and are
// in a stored format come back untouched.
func Downscale(data []byte, maxSize int) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", errors.Wrap(err, "decode artwork")
	}

	b := img.Bounds()
	width, height := b.Dx(), b.Dy()
	fits := maxSize <= 0 || (width <= maxSize && height <= maxSize)
	if fits {
		switch format {
		case "jpeg":
			return data, mimeJPEG, nil
		case "png":
			return data, mimePNG, nil
		}
	}

	out := img
	if !fits {
		newWidth, newHeight := maxSize, maxSize
		if width > height {
			newHeight = height * maxSize / width
		} else {
			newWidth = width * maxSize / height
		}
		if newWidth < 1 {
			newWidth = 1
		}
		if newHeight < 1 {
			newHeight = 1
		}

		dc := gg.NewContext(newWidth, newHeight)
		dc.Scale(float64(newWidth)/float64(width), float64(newHeight)/float64(height))
		dc.DrawImage(img, -b.Min.X, -b.Min.Y)
		out = dc.Image()
	}

	var buf bytes.Buffer
	if format == "jpeg" {
		err = jpeg.Encode(&buf, out, &jpeg.Options{Quality: 90})
		return buf.Bytes(), mimeJPEG, errors.Wrap(err, "encode jpeg")
	}
	err = png.Encode(&buf, out)
	return buf.Bytes(), mimePNG, errors.Wrap(err, "encode png")
}

func extFor(mimeType string) string {
	if mimeType == mimePNG {
		return ".png"
	}
	return ".jpg"
}
