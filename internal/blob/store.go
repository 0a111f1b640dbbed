// Package blob stores uploaded media and returns public URLs for it.
package blob

import (
	"context"
	"errors"
	"path"
	"strconv"
	"strings"
	"time"
)

// ErrNotFound is returned when a stored object does not exist.
var ErrNotFound = errors.New("blob not found")

// ErrInvalidPath is returned for object paths that escape the store root.
var ErrInvalidPath = errors.New("invalid blob path")

// Bucket prefixes used by the portfolio.
const (
	PrefixPortfolio = "portfolio"
	PrefixABTests   = "ab-tests"
)

// Store persists objects within one bucket.
type Store interface {
	// Put stores data at objectPath and returns its public URL.
	Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)

	// Delete removes the object at objectPath. Deleting a missing object
	// is not an error.
	Delete(ctx context.Context, objectPath string) error
}

// ObjectPath names an upload as prefix/<unix-millis>.<ext>.
func ObjectPath(prefix, filename string, now time.Time) string {
	return path.Join(prefix, strconv.FormatInt(now.UnixMilli(), 10)+"."+Ext(filename))
}

// ABObjectPath names an A/B test upload as ab-tests/<version>_<unix-millis>.<ext>.
func ABObjectPath(version, filename string, now time.Time) string {
	name := version + "_" + strconv.FormatInt(now.UnixMilli(), 10) + "." + Ext(filename)
	return path.Join(PrefixABTests, name)
}

// Ext returns the lowercase extension of filename without the dot, or
// "bin" when there is none.
func Ext(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(filename), "."))
	if ext == "" {
		return "bin"
	}
	return ext
}

// DetectFileType classifies an upload as "video" or "image" by its
// content type.
func DetectFileType(contentType string) string {
	if strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return "video"
	}
	return "image"
}

// PublicURL joins a base URL and an object path.
func PublicURL(baseURL, objectPath string) string {
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(objectPath, "/")
}

// Clean validates objectPath and returns it in canonical form.
func Clean(objectPath string) (string, error) {
	p := path.Clean("/" + objectPath)[1:]
	if p == "" || p != strings.TrimPrefix(objectPath, "/") {
		return "", ErrInvalidPath
	}
	return p, nil
}
