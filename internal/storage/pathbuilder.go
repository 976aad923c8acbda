package storage

import (
	"fmt"
	"strings"
	"time"
)

// ObjectKey places a media file under catalog/<yyyy>/<mm>/.
func ObjectKey(at time.Time, fileName string) (string, error) {
	name, err := validateFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("catalog/%04d/%02d/%s", at.Year(), int(at.Month()), name), nil
}

// DerivativeKey is the key of a derived representation stored next to its original.
func DerivativeKey(key, label string) string {
	slash := strings.LastIndex(key, "/")
	return key[:slash+1] + label + "/" + key[slash+1:]
}

func validateFileName(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("storage: fileName is required")
	}
	if strings.ContainsAny(value, "/\\") {
		return "", fmt.Errorf("storage: fileName contains invalid path characters")
	}
	if strings.Contains(value, "..") {
		return "", fmt.Errorf("storage: fileName contains invalid traversal sequence")
	}
	return value, nil
}
