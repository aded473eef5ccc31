//nolint:revive // types is a common Go package naming convention
package types

// ImageFormat selects which capture files an image directory scan picks up.
type ImageFormat string

// Supported capture formats.
const (
	ImageFormatPGM  ImageFormat = "pgm"
	ImageFormatJPEG ImageFormat = "jpeg"
)

// Extension returns the file extension (with dot) for the format.
func (f ImageFormat) Extension() string {
	if f == ImageFormatJPEG {
		return ".jpg"
	}
	return ".pgm"
}

// Valid reports whether the format is supported.
func (f ImageFormat) Valid() bool {
	return f == ImageFormatPGM || f == ImageFormatJPEG
}

// ImageFrame is one capture on disk.
type ImageFrame struct {
	// CaptureTime is the capture timestamp in fractional seconds (UTC epoch).
	CaptureTime float64 `json:"capture_time" yaml:"capture_time"`
	// Path is the file path of the capture.
	Path string `json:"path" yaml:"path"`
}
