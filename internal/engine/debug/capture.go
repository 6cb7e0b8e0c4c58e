// Package debug provides screenshot capture and overlay geometry.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotCapture writes timestamped PNG files.
type ScreenshotCapture struct {
	outputDir string
	prefix    string
	now       func() time.Time
}

// NewScreenshotCapture creates a new screenshot capture handler.
func NewScreenshotCapture(outputDir, prefix string) *ScreenshotCapture {
	return &ScreenshotCapture{
		outputDir: outputDir,
		prefix:    prefix,
		now:       time.Now,
	}
}

// CaptureFromPixels saves RGBA8 pixel data with the bottom row first, as
// returned by glReadPixels.
func (sc *ScreenshotCapture) CaptureFromPixels(pixels []byte, width, height int) (string, error) {
	img, err := FlipRows(pixels, width, height)
	if err != nil {
		return "", err
	}
	return sc.CaptureFromImage(img)
}

// CaptureFromImage saves an image under a generated filename.
func (sc *ScreenshotCapture) CaptureFromImage(img image.Image) (string, error) {
	if sc.outputDir != "" {
		if err := os.MkdirAll(sc.outputDir, 0755); err != nil {
			return "", fmt.Errorf("creating output dir: %w", err)
		}
	}
	filename := sc.GenerateFilename()
	if err := WritePNG(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}

// GenerateFilename generates a screenshot filename without saving.
func (sc *ScreenshotCapture) GenerateFilename() string {
	timestamp := sc.now().Format("2006-01-02_15-04-05.000")
	filename := fmt.Sprintf("%s_%s.png", sc.prefix, timestamp)
	if sc.outputDir != "" {
		filename = filepath.Join(sc.outputDir, filename)
	}
	return filename
}

// FlipRows converts bottom-up RGBA8 rows into a top-down image.
func FlipRows(pixels []byte, width, height int) (*image.RGBA, error) {
	if len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: expected %d, got %d", width*height*4, len(pixels))
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	rowSize := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], pixels[src:src+rowSize])
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return file.Close()
}
