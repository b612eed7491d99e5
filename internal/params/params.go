package params

import (
	"fmt"
	"net/http"
	"strconv"
)

// Errors
var (
	ErrInvalidCount = fmt.Errorf("Invalid count")
)

// DefaultCount is the number of images used when a request doesn't specify a count
const DefaultCount = 5

// Count returns the count query parameter, or DefaultCount when it's absent
func Count(r *http.Request) (int, error) {
	val := r.URL.Query().Get("count")
	if val == "" {
		return DefaultCount, nil
	}

	count, err := strconv.Atoi(val)
	if err != nil || count < 0 {
		return -1, ErrInvalidCount
	}

	return count, nil
}

// UploadCount is like Count, but also treats a count of zero as DefaultCount
func UploadCount(r *http.Request) (int, error) {
	count, err := Count(r)
	if err != nil {
		return -1, err
	}

	if count == 0 {
		return DefaultCount, nil
	}

	return count, nil
}
