package ports

import "context"

// FrameSource captures camera frames for emotion inference.
type FrameSource interface {
	// Capture returns one frame encoded as a JPEG data URL.
	Capture(ctx context.Context) (string, error)

	// Close releases the camera.
	Close() error
}
