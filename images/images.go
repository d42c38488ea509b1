// Package images downloads product images, validates and transcodes them,
// and writes the result to file storage. Every failure comes back as a
// Result value so the import pipeline can keep going with the remote URL.
package images

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/floracart/scraper/fetch"
	"github.com/floracart/scraper/store"
)

// Options bounds the transcode step.
type Options struct {
	MaxBytes int // reject payloads above this many bytes
	MaxDim   int // bounding box edge; images are never upscaled
	Quality  int // JPEG quality
}

// DefaultOptions matches the storefront's fixed transcode target.
func DefaultOptions() Options {
	return Options{
		MaxBytes: 10 << 20,
		MaxDim:   800,
		Quality:  85,
	}
}

// Result reports the outcome of one fetch-and-store attempt.
type Result struct {
	Success   bool
	LocalPath string
	Err       string
}

// Processor downloads and transcodes product images.
type Processor struct {
	client *fetch.Client
	files  store.FileStorage
	opts   Options
}

// NewProcessor wires a processor to a fetch client and file storage.
func NewProcessor(client *fetch.Client, files store.FileStorage, opts Options) *Processor {
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultOptions().MaxBytes
	}
	if opts.MaxDim <= 0 {
		opts.MaxDim = DefaultOptions().MaxDim
	}
	if opts.Quality <= 0 {
		opts.Quality = DefaultOptions().Quality
	}
	return &Processor{client: client, files: files, opts: opts}
}

// FetchAndStore downloads the image at url, fits it into the bounding box,
// re-encodes it as JPEG, and stores it under a path namespaced by product
// id and timestamp.
func (p *Processor) FetchAndStore(ctx context.Context, url string, productID int) Result {
	data, contentType, err := p.client.Get(ctx, url)
	if err != nil {
		return Result{Err: err.Error()}
	}

	if !strings.HasPrefix(strings.ToLower(contentType), "image/") {
		return Result{Err: fmt.Sprintf("not an image: content type %q", contentType)}
	}
	if len(data) > p.opts.MaxBytes {
		return Result{Err: fmt.Sprintf("image exceeds %d byte limit", p.opts.MaxBytes)}
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{Err: fmt.Sprintf("decode image: %v", err)}
	}

	// Fit scales down to the bounding box and leaves smaller images alone.
	img = imaging.Fit(img, p.opts.MaxDim, p.opts.MaxDim, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(p.opts.Quality)); err != nil {
		return Result{Err: fmt.Sprintf("encode image: %v", err)}
	}

	filename := fmt.Sprintf("product-%d-%d.jpg", productID, time.Now().UnixMilli())
	publicPath, err := p.files.Save(ctx, path.Join("uploads", "products", filename), buf.Bytes())
	if err != nil {
		return Result{Err: fmt.Sprintf("store image: %v", err)}
	}

	return Result{Success: true, LocalPath: publicPath}
}
