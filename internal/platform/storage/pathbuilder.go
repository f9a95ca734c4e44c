package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/voltline/site/internal/platform/textutil"
)

// MediaObjectPath composes media/<yyyy>/<mm>/<id>/<file>, folding the file
// name to a URL-safe form.
func MediaObjectPath(mediaID, fileName string, uploadedAt time.Time) (string, error) {
	id, err := validateSegment("mediaID", mediaID)
	if err != nil {
		return "", err
	}
	name := textutil.SafeFileName(fileName)
	if name == "" {
		return "", fmt.Errorf("storage: fileName %q has no usable characters", fileName)
	}
	uploadedAt = uploadedAt.UTC()
	return fmt.Sprintf("media/%04d/%02d/%s/%s", uploadedAt.Year(), int(uploadedAt.Month()), id, name), nil
}

func validateSegment(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: %s is required", name)
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: %s contains invalid path characters", name)
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: %s contains invalid traversal sequence", name)
	}
	return value, nil
}
