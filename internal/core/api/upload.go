package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/neilberkman/proofa/internal/core/upload"
)

// uploadField is the multipart field the backend reads the file from
const uploadField = "document"

type uploadWire struct {
	UploadID    string `json:"upload_id"`
	URL         string `json:"url"`
	StoragePath string `json:"storage_path"`
}

// Upload sends the file at path as multipart form data. onProgress receives
// the share of the request body written so far, 0 to 100.
func (c *Client) Upload(ctx context.Context, path string, onProgress func(percent int)) (upload.Result, error) {
	const op = "upload"

	f, err := os.Open(path)
	if err != nil {
		return upload.Result{}, &Error{Op: op, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer func() { _ = f.Close() }()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(uploadField, filepath.Base(path))
	if err != nil {
		return upload.Result{}, &Error{Op: op, Err: err}
	}
	if _, err := io.Copy(part, f); err != nil {
		return upload.Result{}, &Error{Op: op, Err: fmt.Errorf("failed to read file: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return upload.Result{}, &Error{Op: op, Err: err}
	}

	total := int64(body.Len())
	reader := &progressReader{r: bytes.NewReader(body.Bytes()), total: total, onProgress: onProgress}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", reader)
	if err != nil {
		return upload.Result{}, &Error{Op: op, Err: err}
	}
	req.ContentLength = total
	req.Header.Set("Content-Type", mw.FormDataContentType())

	reader.report(0)
	data, err := c.send(op, req)
	if err != nil {
		return upload.Result{}, err
	}
	reader.report(100)

	var w uploadWire
	if err := json.Unmarshal(data, &w); err != nil {
		return upload.Result{}, &Error{Op: op, Err: fmt.Errorf("failed to decode upload result: %w", err)}
	}
	if w.UploadID == "" {
		return upload.Result{}, &Error{Op: op, Message: "backend returned no upload_id"}
	}
	return upload.Result{FileID: w.UploadID, URL: w.URL, StoragePath: w.StoragePath}, nil
}

// progressReader reports how much of the request body the transport has
// consumed. Percentages are only reported when they change.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(int)

	mu   sync.Mutex
	last int
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.read += int64(n)
		p.report(int(p.read * 100 / p.total))
	}
	return n, err
}

func (p *progressReader) report(percent int) {
	if p.onProgress == nil {
		return
	}
	p.mu.Lock()
	if percent == p.last && percent != 0 {
		p.mu.Unlock()
		return
	}
	p.last = percent
	p.mu.Unlock()
	p.onProgress(percent)
}
