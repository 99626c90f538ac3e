package test_internals

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var evenColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
var oddColor = color.RGBA{R: 0, G: 255, B: 0, A: 255}
var altColor = color.RGBA{R: 0, G: 0, B: 255, A: 255}

func colorFor(x int, y int) color.Color {
	c := oddColor
	if (y%2.0) == 0 && (x%2.0) == 0 {
		c = altColor
	} else if (y%2.0) == 0 || (x%2.0) == 0 {
		c = evenColor
	}
	return c
}

// MakeTestImage renders a checkerboard PNG, standing in for a profile photo.
func MakeTestImage(width int, height int) (string, []byte, error) {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := colorFor(x, y)
			img.Set(x, y, c)
		}
	}

	b := bytes.NewBuffer(make([]byte, 0))
	err := imaging.Encode(b, img, imaging.PNG)
	if err != nil {
		return "", nil, err
	}

	return "image/png", b.Bytes(), nil
}

// WriteTestImage writes a test image into dir and returns its path.
func WriteTestImage(t *testing.T, dir string, name string) string {
	_, b, err := MakeTestImage(32, 32)
	require.NoError(t, err)
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, b, 0644))
	return p
}

func AssertIsTestImage(t *testing.T, i io.Reader) {
	img, _, err := image.Decode(i)
	assert.NoError(t, err, "Error decoding image")
	width := img.Bounds().Max.X
	height := img.Bounds().Max.Y
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			c := colorFor(x, y)
			if !assert.Equal(t, c, img.At(x, y), fmt.Sprintf("Wrong colour for pixel %d,%d", x, y)) {
				return // don't print thousands of errors
			}
		}
	}
}
