package images

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"

	"github.com/floracart/scraper/fetch"
	"github.com/floracart/scraper/store"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func imageResponder(data []byte, contentType string) httpmock.Responder {
	return func(*http.Request) (*http.Response, error) {
		resp := httpmock.NewBytesResponse(200, data)
		resp.Header.Set("Content-Type", contentType)
		return resp, nil
	}
}

func newTestProcessor(t *testing.T, opts Options) (*Processor, *httpmock.MockTransport, string) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	client := fetch.New(fetch.Options{Timeout: time.Second})
	client.WithTransport(transport)

	dir := t.TempDir()
	files, err := store.NewDiskStorage(dir)
	if err != nil {
		t.Fatalf("disk storage: %v", err)
	}
	return NewProcessor(client, files, opts), transport, dir
}

func TestFetchAndStoreTranscodesToJPEG(t *testing.T) {
	processor, transport, dir := newTestProcessor(t, Options{})
	transport.RegisterResponder("GET", "https://cdn.example.test/rose.png",
		imageResponder(pngBytes(t, 100, 50), "image/png"))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/rose.png", 7)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Err)
	}
	if !strings.HasPrefix(result.LocalPath, "/uploads/products/product-7-") {
		t.Fatalf("local path = %q, want product-id namespaced path", result.LocalPath)
	}
	if !strings.HasSuffix(result.LocalPath, ".jpg") {
		t.Fatalf("local path = %q, want .jpg", result.LocalPath)
	}

	written := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(result.LocalPath, "/")))
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if _, err := jpeg.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("stored file is not a valid jpeg: %v", err)
	}
}

func TestFetchAndStoreResizesLargeImages(t *testing.T) {
	processor, transport, dir := newTestProcessor(t, Options{MaxDim: 800})
	transport.RegisterResponder("GET", "https://cdn.example.test/big.png",
		imageResponder(pngBytes(t, 2000, 1000), "image/png"))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/big.png", 1)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Err)
	}

	written := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(result.LocalPath, "/")))
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode stored file: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > 800 || bounds.Dy() > 800 {
		t.Fatalf("stored image %dx%d exceeds bounding box", bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx() != 800 || bounds.Dy() != 400 {
		t.Fatalf("stored image %dx%d, want 800x400 preserving aspect ratio", bounds.Dx(), bounds.Dy())
	}
}

func TestFetchAndStoreKeepsSmallImageSize(t *testing.T) {
	processor, transport, dir := newTestProcessor(t, Options{MaxDim: 800})
	transport.RegisterResponder("GET", "https://cdn.example.test/small.png",
		imageResponder(pngBytes(t, 120, 90), "image/png"))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/small.png", 2)
	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Err)
	}

	written := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(result.LocalPath, "/")))
	data, err := os.ReadFile(written)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode stored file: %v", err)
	}
	if got := img.Bounds(); got.Dx() != 120 || got.Dy() != 90 {
		t.Fatalf("stored image %dx%d, want 120x90 without upscaling", got.Dx(), got.Dy())
	}
}

func TestFetchAndStoreRejectsNonImage(t *testing.T) {
	processor, transport, _ := newTestProcessor(t, Options{})
	transport.RegisterResponder("GET", "https://shop.example.test/page",
		imageResponder([]byte("<html></html>"), "text/html"))

	result := processor.FetchAndStore(context.Background(), "https://shop.example.test/page", 1)
	if result.Success {
		t.Fatal("expected failure for non-image content type")
	}
	if !strings.Contains(result.Err, "not an image") {
		t.Fatalf("error = %q", result.Err)
	}
}

func TestFetchAndStoreRejectsOversizedPayload(t *testing.T) {
	processor, transport, _ := newTestProcessor(t, Options{MaxBytes: 16})
	transport.RegisterResponder("GET", "https://cdn.example.test/big.png",
		imageResponder(pngBytes(t, 50, 50), "image/png"))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/big.png", 1)
	if result.Success {
		t.Fatal("expected failure for oversized payload")
	}
	if !strings.Contains(result.Err, "limit") {
		t.Fatalf("error = %q", result.Err)
	}
}

func TestFetchAndStoreFetchFailure(t *testing.T) {
	processor, transport, _ := newTestProcessor(t, Options{})
	transport.RegisterResponder("GET", "https://cdn.example.test/missing.png",
		httpmock.NewStringResponder(404, ""))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/missing.png", 1)
	if result.Success {
		t.Fatal("expected failure for missing image")
	}
	if result.Err == "" {
		t.Fatal("expected error message")
	}
}

func TestFetchAndStoreRejectsCorruptImage(t *testing.T) {
	processor, transport, _ := newTestProcessor(t, Options{})
	transport.RegisterResponder("GET", "https://cdn.example.test/broken.png",
		imageResponder([]byte("not a png at all"), "image/png"))

	result := processor.FetchAndStore(context.Background(), "https://cdn.example.test/broken.png", 1)
	if result.Success {
		t.Fatal("expected failure for corrupt payload")
	}
	if !strings.Contains(result.Err, "decode") {
		t.Fatalf("error = %q", result.Err)
	}
}
