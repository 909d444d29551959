package library

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type frame struct {
	id   string
	body []byte
}

func textFrame(id, text string) frame {
	return frame{id: id, body: append([]byte{0}, text...)}
}

func pictureFrame(t *testing.T) frame {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	body := []byte{0}
	body = append(body, "image/png"...)
	body = append(body, 0, 3, 0)
	body = append(body, buf.Bytes()...)
	return frame{id: "APIC", body: body}
}

// writeID3 writes an mp3 stub carrying an ID3v2.3 tag with the given frames.
func writeID3(t *testing.T, path string, frames ...frame) {
	var body bytes.Buffer
	for _, f := range frames {
		body.WriteString(f.id)
		binary.Write(&body, binary.BigEndian, uint32(len(f.body)))
		body.Write([]byte{0, 0})
		body.Write(f.body)
	}

	size := body.Len()
	var out bytes.Buffer
	out.WriteString("ID3")
	out.Write([]byte{3, 0, 0})
	out.Write([]byte{
		byte(size>>21) & 0x7f,
		byte(size>>14) & 0x7f,
		byte(size>>7) & 0x7f,
		byte(size) & 0x7f,
	})
	out.Write(body.Bytes())
	out.Write(make([]byte, 64))

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, out.Bytes(), 0644))
}

func writeSong(t *testing.T, path, title, artist, album, trck string, extra ...frame) {
	frames := []frame{
		textFrame("TIT2", title),
		textFrame("TPE1", artist),
		textFrame("TALB", album),
		textFrame("TRCK", trck),
	}
	writeID3(t, path, append(frames, extra...)...)
}
