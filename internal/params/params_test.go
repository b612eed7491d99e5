package params_test

import (
	"net/http/httptest"
	"testing"

	"github.com/infinitescroll/image-store/internal/params"
)

func TestCount(t *testing.T) {
	tests := []struct {
		URL                 string
		ExpectedCount       int
		ExpectedUploadCount int
		ExpectedError       error
	}{
		{"/images/random", 5, 5, nil},
		{"/images/random?count=", 5, 5, nil},
		{"/images/random?count=0", 0, 5, nil},
		{"/images/random?count=1", 1, 1, nil},
		{"/images/random?count=30", 30, 30, nil},
		{"/images/random?count=-1", -1, -1, params.ErrInvalidCount},
		{"/images/random?count=five", -1, -1, params.ErrInvalidCount},
		{"/images/random?count=1.5", -1, -1, params.ErrInvalidCount},
	}

	for _, test := range tests {
		r := httptest.NewRequest("GET", test.URL, nil)

		count, err := params.Count(r)
		if err != test.ExpectedError {
			t.Errorf("%s: wrong error %v", test.URL, err)
			continue
		}

		if count != test.ExpectedCount {
			t.Errorf("%s: wrong count %d", test.URL, count)
		}

		uploadCount, err := params.UploadCount(r)
		if err != test.ExpectedError {
			t.Errorf("%s: wrong upload error %v", test.URL, err)
			continue
		}

		if uploadCount != test.ExpectedUploadCount {
			t.Errorf("%s: wrong upload count %d", test.URL, uploadCount)
		}
	}
}
