package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, body []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestDir_Save(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	d := NewDir(filepath.Join(root, "images"))

	url, err := d.Save(fileHeader(t, "Photo.PNG", []byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/images/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	data, err := os.ReadFile(filepath.Join(root, "images", filepath.Base(url)))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestDir_SaveRejectsUnknownType(t *testing.T) {
	t.Parallel()

	d := NewDir(t.TempDir())
	_, err := d.Save(fileHeader(t, "script.sh", []byte("#!/bin/sh")))
	assert.Error(t, err)
}
