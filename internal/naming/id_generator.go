package naming

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IDGenerator generates unique identifiers
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator generates random (version 4) UUIDs
type UUIDGenerator struct{}

// NewUUIDGenerator creates a new UUID generator
func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate creates a unique identifier
func (g *UUIDGenerator) Generate() string {
	return uuid.NewString()
}

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// ChartFilename builds the object key for a rendered chart.
// The extension stays ".jpg" even though the body is PNG; existing links depend on it.
func ChartFilename(now time.Time) string {
	return fmt.Sprintf("chart-%d.jpg", now.UnixMilli())
}

// PrefixedFilename prefixes filename with id so repeated uploads never share a key.
func PrefixedFilename(id, filename string) string {
	return id + "-" + filename
}
