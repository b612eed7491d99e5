package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/infinitescroll/image-store/internal/handler"
)

const allowedOrigin = "http://localhost:3000"

func TestCORS(t *testing.T) {
	tests := []struct {
		Name            string
		Method          string
		Headers         map[string]string
		ExpectedHeaders map[string]string
	}{
		{
			Name:   "sets correct headers for the allowed origin",
			Method: "GET",
			Headers: map[string]string{
				"Origin": allowedOrigin,
			},
			ExpectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":   allowedOrigin,
				"Access-Control-Expose-Headers": "Etag",
			},
		},
		{
			Name:   "does not allow other origins",
			Method: "GET",
			Headers: map[string]string{
				"Origin": "http://www.example.com",
			},
			ExpectedHeaders: map[string]string{
				"Access-Control-Allow-Origin": "",
			},
		},
		{
			Name:   "responds to preflight requests for the allowed origin",
			Method: "OPTIONS",
			Headers: map[string]string{
				"Origin":                        allowedOrigin,
				"Access-Control-Request-Method": "GET",
			},
			ExpectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  allowedOrigin,
				"Access-Control-Allow-Methods": "GET",
			},
		},
		{
			Name:   "allows preflight requests for uploads",
			Method: "OPTIONS",
			Headers: map[string]string{
				"Origin":                        allowedOrigin,
				"Access-Control-Request-Method": "POST",
			},
			ExpectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  allowedOrigin,
				"Access-Control-Allow-Methods": "POST",
			},
		},
		{
			Name:   "rejects preflight requests for other methods",
			Method: "OPTIONS",
			Headers: map[string]string{
				"Origin":                        allowedOrigin,
				"Access-Control-Request-Method": "DELETE",
			},
			ExpectedHeaders: map[string]string{
				"Access-Control-Allow-Origin":  "",
				"Access-Control-Allow-Methods": "",
			},
		},
	}

	for _, test := range tests {
		r, err := http.NewRequest(test.Method, "http://www.example.com/images/random", nil)
		if err != nil {
			t.Errorf("%s: %s", test.Name, err)
			continue
		}

		for header, value := range test.Headers {
			r.Header.Set(header, value)
		}

		rr := httptest.NewRecorder()
		testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

		handler.CORS(allowedOrigin, []string{"ETag"}, testHandler).ServeHTTP(rr, r)

		for expectedHeader, expectedValue := range test.ExpectedHeaders {
			headerValue := rr.Header().Get(expectedHeader)
			if headerValue != expectedValue {
				t.Errorf("%s: wrong header value for %s, %#v", test.Name, expectedHeader, headerValue)
			}
		}
	}
}
