package storage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-organizer-go/internal/config"
)

func writeTempImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 0x50, 0x4E, 0x47}, 0o600))
	return path
}

func TestImageKitPublisher_PublishImage(t *testing.T) {
	var gotAuth string
	var gotFields map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok, "上传请求必须携带basic auth")
		gotAuth = user

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotFields = map[string]string{
			"fileName": r.FormValue("fileName"),
			"folder":   r.FormValue("folder"),
		}
		_, _, err := r.FormFile("file")
		require.NoError(t, err, "multipart中必须包含file字段")

		_ = json.NewEncoder(w).Encode(map[string]string{
			"url": "https://ik.example.com/cv-photos/photo.png",
		})
	}))
	defer server.Close()

	p := NewImageKitPublisher(config.ImageKitConfig{
		UploadURL:      server.URL,
		PrivateKey:     "private_test_key",
		Folder:         "/cv-photos",
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	url, err := p.PublishImage(context.Background(), writeTempImage(t), "photo.png")
	require.NoError(t, err)
	assert.Equal(t, "https://ik.example.com/cv-photos/photo.png", url)
	assert.Equal(t, "private_test_key", gotAuth, "私钥作为basic auth用户名")
	assert.Equal(t, "photo.png", gotFields["fileName"])
	assert.Equal(t, "/cv-photos", gotFields["folder"])
}

func TestImageKitPublisher_ServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid key"}`, http.StatusForbidden)
	}))
	defer server.Close()

	p := NewImageKitPublisher(config.ImageKitConfig{
		UploadURL:      server.URL,
		PrivateKey:     "bad_key",
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	url, err := p.PublishImage(context.Background(), writeTempImage(t), "photo.png")
	assert.ErrorIs(t, err, ErrAssetUploadFailed)
	assert.Empty(t, url, "失败时返回空URL，调用方按无头像降级")
}

func TestImageKitPublisher_MissingURLInResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"fileId": "abc"}`))
	}))
	defer server.Close()

	p := NewImageKitPublisher(config.ImageKitConfig{
		UploadURL:      server.URL,
		PrivateKey:     "key",
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	_, err := p.PublishImage(context.Background(), writeTempImage(t), "photo.png")
	assert.ErrorIs(t, err, ErrAssetUploadFailed)
}

func TestImageKitPublisher_FileNotFound(t *testing.T) {
	p := NewImageKitPublisher(config.ImageKitConfig{
		UploadURL:      "http://127.0.0.1:0",
		PrivateKey:     "key",
		TimeoutSeconds: 5,
	}, zerolog.Nop())

	_, err := p.PublishImage(context.Background(), "/nonexistent/photo.png", "photo.png")
	assert.ErrorIs(t, err, ErrAssetUploadFailed)
}
