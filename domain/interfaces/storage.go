package interfaces

// ScreenshotStore persists failure screenshots
type ScreenshotStore interface {
	// Save writes a PNG under name and returns the path it was written to.
	// data may be raw PNG bytes or a base64 payload.
	Save(name string, data []byte) (string, error)
}
