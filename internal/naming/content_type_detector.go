package naming

import "strings"

// DefaultContentType is used for uploads whose extension is not in the table.
const DefaultContentType = "text/plain"

// ContentTypeDetector detects content types from filenames
type ContentTypeDetector interface {
	DetectFromFilename(filename string) string
}

// SuffixContentTypeDetector maps a filename suffix to a content type
type SuffixContentTypeDetector struct{}

// NewSuffixContentTypeDetector creates a new content type detector
func NewSuffixContentTypeDetector() *SuffixContentTypeDetector {
	return &SuffixContentTypeDetector{}
}

// DetectFromFilename detects content type from filename extension
func (d *SuffixContentTypeDetector) DetectFromFilename(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(name, ".html"):
		return "text/html"
	case strings.HasSuffix(name, ".css"):
		return "text/css"
	case strings.HasSuffix(name, ".js"):
		return "application/javascript"
	case strings.HasSuffix(name, ".json"):
		return "application/json"
	default:
		return DefaultContentType
	}
}
