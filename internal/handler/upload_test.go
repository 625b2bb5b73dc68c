package handler

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func uploadRequest(t *testing.T, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadDataURL(t *testing.T) {
	mux, _, _ := setupMux(t)

	content := []byte{0x89, 0x50, 0x4e, 0x47}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "house.PNG", content))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decodeBody(t, rec, &resp)

	wantPrefix := "data:image/png;base64,"
	if !strings.HasPrefix(resp["url"], wantPrefix) {
		t.Fatalf("url = %q, want prefix %q", resp["url"], wantPrefix)
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(resp["url"], wantPrefix))
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !bytes.Equal(decoded, content) {
		t.Errorf("payload = %v, want %v", decoded, content)
	}
}

func TestUploadMimeInference(t *testing.T) {
	mux, _, _ := setupMux(t)

	cases := []struct {
		filename string
		want     string
	}{
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.jpg", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"photo", "image/jpeg"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, uploadRequest(t, tc.filename, []byte{1, 2, 3}))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", tc.filename, rec.Code)
		}
		var resp map[string]string
		decodeBody(t, rec, &resp)
		if !strings.HasPrefix(resp["url"], "data:"+tc.want+";base64,") {
			t.Errorf("%s: url = %q, want mime %s", tc.filename, resp["url"], tc.want)
		}
	}
}

func TestUploadEmptyFile(t *testing.T) {
	mux, _, _ := setupMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, uploadRequest(t, "empty.png", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestUploadMissingFileField(t *testing.T) {
	mux, _, _ := setupMux(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("other", "value")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
