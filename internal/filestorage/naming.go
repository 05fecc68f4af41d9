package filestorage

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// allowedExtRegex matches the permitted image extensions at the very end of a name.
var allowedExtRegex = regexp.MustCompile(`\.(png|jpg|jpeg)$`)

// KeyStrategy decides the suffix appended to the base name of an uploaded file.
type KeyStrategy string

const (
	// KeyTimestamp appends the upload time in epoch milliseconds: apple-logo-1718000000000.jpg.
	// Two uploads of one base name in the same millisecond collide.
	KeyTimestamp KeyStrategy = "timestamp"
	// KeyUUID appends a random v4 UUID instead.
	KeyUUID KeyStrategy = "uuid"
)

// ParseKeyStrategy validates a strategy name. An empty name selects KeyTimestamp.
func ParseKeyStrategy(s string) (KeyStrategy, error) {
	switch KeyStrategy(s) {
	case "", KeyTimestamp:
		return KeyTimestamp, nil
	case KeyUUID:
		return KeyUUID, nil
	default:
		return "", fmt.Errorf("unknown key strategy %q", s)
	}
}

// splitName splits name into base and extension (without the dot).
// ok is false when the extension is not one of png, jpg or jpeg.
func splitName(name string) (base, ext string, ok bool) {
	m := allowedExtRegex.FindStringSubmatchIndex(name)
	if m == nil {
		return "", "", false
	}
	return name[:m[0]], name[m[2]:m[3]], true
}

// storedKey composes the object key for an upload of base.ext at now.
func (k KeyStrategy) storedKey(base, ext string, now time.Time) string {
	suffix := strconv.FormatInt(now.UnixMilli(), 10)
	if k == KeyUUID {
		suffix = uuid.NewString()
	}
	return base + "-" + suffix + "." + ext
}

func contentTypeFor(ext string) string {
	if ext == "png" {
		return "image/png"
	}
	return "image/jpeg"
}
