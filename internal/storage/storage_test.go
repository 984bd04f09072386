package storage_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), bytes.Repeat([]byte{0}, 32)...)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", name)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File["image"][0]
}

func TestSaveImageLocal(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()
	store := storage.NewLocal(dir, "/uploads")

	obj, err := storage.SaveImage(context.Background(), store, fileHeader(t, "Anel.PNG", pngBytes), "products/12", 1<<20)
	c.Assert(err, qt.IsNil)
	c.Assert(obj.ContentType, qt.Equals, "image/png")
	c.Assert(strings.HasPrefix(obj.Key, "products/12/"), qt.IsTrue)
	c.Assert(strings.HasSuffix(obj.Key, ".png"), qt.IsTrue)
	c.Assert(obj.URL, qt.Equals, "/uploads/"+obj.Key)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	c.Assert(err, qt.IsNil)
	c.Assert(data, qt.DeepEquals, pngBytes)

	c.Assert(store.Delete(context.Background(), obj.Key), qt.IsNil)
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(obj.Key)))
	c.Assert(os.IsNotExist(err), qt.IsTrue)
	// deleting twice is fine
	c.Assert(store.Delete(context.Background(), obj.Key), qt.IsNil)
}

func TestSaveImageRejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content []byte
		max     int64
		want    error
	}{
		{name: "extension", file: "doc.pdf", content: pngBytes, want: storage.ErrUnsupportedFormat},
		{name: "content not image", file: "fake.jpg", content: []byte("#!/bin/sh\necho hi\n"), want: storage.ErrUnsupportedFormat},
		{name: "too large", file: "big.png", content: pngBytes, max: 8, want: storage.ErrTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := qt.New(t)
			store := storage.NewLocal(t.TempDir(), "/uploads")
			_, err := storage.SaveImage(context.Background(), store, fileHeader(t, tt.file, tt.content), "x", tt.max)
			c.Assert(err, qt.ErrorIs, tt.want)
		})
	}
}

func TestCleanFolder(t *testing.T) {
	c := qt.New(t)
	c.Assert(storage.CleanFolder("../Produtos/ Anéis /./x"), qt.Equals, "produtos/anis/x")
	c.Assert(storage.CleanFolder(""), qt.Equals, "")
}

func TestValidateKey(t *testing.T) {
	c := qt.New(t)
	c.Assert(storage.ValidateKey("products/1/a.png"), qt.IsNil)
	for _, bad := range []string{"", "/etc/passwd", "../x.png", "a/../../x", "a//b", "a\\b"} {
		c.Assert(storage.ValidateKey(bad), qt.Equals, storage.ErrInvalidKey, qt.Commentf("key %q", bad))
	}
}
