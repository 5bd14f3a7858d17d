package pkg

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteResponses(t *testing.T) {
	testCases := []struct {
		name                string
		write               func(w http.ResponseWriter)
		expectedStatus      int
		expectedContentType string
		expectedBody        string
	}{
		{
			name: "bytes",
			write: func(w http.ResponseWriter) {
				WriteResponseBytes(w, ContentType.JSON, []byte(`{"recommendedStack":"Foundation Stack"}`), http.StatusOK)
			},
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.JSON,
			expectedBody:        `{"recommendedStack":"Foundation Stack"}`,
		},
		{
			name: "bytes ok",
			write: func(w http.ResponseWriter) {
				WriteResponseBytesOK(w, ContentType.JSON, []byte(`{}`))
			},
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.JSON,
			expectedBody:        `{}`,
		},
		{
			name: "string with status",
			write: func(w http.ResponseWriter) {
				WriteResponse(w, ContentType.Text, "gone", http.StatusGone)
			},
			expectedStatus:      http.StatusGone,
			expectedContentType: ContentType.Text,
			expectedBody:        "gone",
		},
		{
			name: "no content type",
			write: func(w http.ResponseWriter) {
				WriteResponse(w, "", "", http.StatusOK)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "text ok",
			write: func(w http.ResponseWriter) {
				WriteTextResponseOK(w, "protocol engine dev: 2 protocols loaded")
			},
			expectedStatus:      http.StatusOK,
			expectedContentType: ContentType.Text,
			expectedBody:        "protocol engine dev: 2 protocols loaded",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			tc.write(rr)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			assert.Equal(t, tc.expectedContentType, rr.Header().Get("Content-Type"))
			assert.Equal(t, tc.expectedBody, rr.Body.String())
		})
	}
}

func TestWriteJSONError(t *testing.T) {
	testCases := []struct {
		message      string
		status       int
		expectedBody string
	}{
		{
			message:      "Protocol not found",
			status:       http.StatusNotFound,
			expectedBody: `{"error":"Protocol not found"}`,
		},
		{
			message:      `Failed to find protocol: bad "quote"`,
			status:       http.StatusInternalServerError,
			expectedBody: `{"error":"Failed to find protocol: bad \"quote\""}`,
		},
		{
			message:      "Method not allowed",
			status:       http.StatusMethodNotAllowed,
			expectedBody: `{"error":"Method not allowed"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.message, func(t *testing.T) {
			rr := httptest.NewRecorder()
			WriteJSONError(rr, tc.message, tc.status)

			assert.Equal(t, tc.status, rr.Code)
			assert.Equal(t, ContentType.JSON, rr.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.expectedBody, rr.Body.String())
		})
	}
}
