// Package camera provides frame sources for emotion sampling.
package camera

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // register decoder
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	_ "golang.org/x/image/bmp"  // register decoder
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder

	"github.com/tejashwikalptaru/aura/internal/domain"
	"github.com/tejashwikalptaru/aura/internal/ports"
)

// Frame size sent to the backend.
const (
	FrameWidth  = 320
	FrameHeight = 240
)

// JPEGQuality is the encoding quality of uploaded frames.
const JPEGQuality = 85

var supportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp"}

// DirectorySource replays the images of a directory as camera frames, in name order
// and wrapping around. A webcam capture tool writing into the directory turns it into a live feed.
type DirectorySource struct {
	logger *slog.Logger
	dir    string

	mu     sync.Mutex
	next   int
	closed bool
}

// NewDirectorySource creates a frame source over dir. The directory must exist.
func NewDirectorySource(logger *slog.Logger, dir string) (*DirectorySource, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frame directory: %w", err)
	}
	if !info.IsDir() {
		return nil, domain.NewValidationError("frames_dir", dir, "not a directory")
	}
	return &DirectorySource{logger: logger, dir: dir}, nil
}

// Capture returns the next frame as a JPEG data URL.
func (s *DirectorySource) Capture(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	files, err := s.frames()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no frames in %s", s.dir)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", fmt.Errorf("frame source closed")
	}
	path := files[s.next%len(files)]
	s.next++
	s.mu.Unlock()

	frame, err := EncodeFile(path)
	if err != nil {
		s.logger.Warn("failed to encode frame", slog.String("path", path), slog.Any("error", err))
		return "", err
	}
	return frame, nil
}

func (s *DirectorySource) frames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read frame directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if slices.Contains(supportedExtensions, strings.ToLower(filepath.Ext(e.Name()))) {
			files = append(files, filepath.Join(s.dir, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

// Close stops the source. Further captures fail.
func (s *DirectorySource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// EncodeFile decodes an image file and returns it as a frame data URL.
func EncodeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return EncodeFrame(img)
}

// EncodeFrame scales img to FrameWidth x FrameHeight and returns a base64 JPEG data URL.
func EncodeFrame(img image.Image) (string, error) {
	dst := image.NewRGBA(image.Rect(0, 0, FrameWidth, FrameHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return "", err
	}
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

var _ ports.FrameSource = (*DirectorySource)(nil)
