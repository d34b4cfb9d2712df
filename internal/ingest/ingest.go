// Package ingest turns uploaded files and user-supplied links into
// datasets. It owns the ingestion error taxonomy: unsupported format,
// unparsable bytes, failed fetch.
package ingest

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/mborhani/vizboard/config"
	"github.com/mborhani/vizboard/internal/dataset"
)

// RawUpload is the file-picker payload: a filename plus base64 content.
// Content may carry a data-URI prefix ("data:...;base64,"), which is
// stripped before decoding.
type RawUpload struct {
	Filename string `json:"filename"`
	Content  string `json:"content_base64"`
}

// Service performs ingestion. The HTTP client carries the configured
// fetch timeout so a dead link cannot stall a session forever.
type Service struct {
	client   *http.Client
	maxBytes int64
	logger   *log.Logger
}

func New(cfg config.IngestConfig) *Service {
	return &Service{
		client:   &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes: cfg.MaxUploadBytes,
		logger:   log.New(log.Writer(), "[INGEST] ", log.LstdFlags),
	}
}

// FromUpload decodes and parses an uploaded file. The filename chooses
// the parser by case-insensitive substring: "csv" or "xls". On success
// it returns the dataset and a user-facing status message.
func (s *Service) FromUpload(up RawUpload) (*dataset.Dataset, string, error) {
	name := strings.ToLower(up.Filename)
	isCSV := strings.Contains(name, "csv")
	isExcel := strings.Contains(name, "xls")
	if !isCSV && !isExcel {
		return nil, "", &UnsupportedFormatError{Filename: up.Filename}
	}

	raw := up.Content
	if idx := strings.IndexByte(raw, ','); idx >= 0 && strings.Contains(raw[:idx], "base64") {
		raw = raw[idx+1:]
	}
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		s.logger.Printf("upload %q: base64 decode: %v", up.Filename, err)
		return nil, "", &ParseError{Filename: up.Filename, Cause: err}
	}
	if s.maxBytes > 0 && int64(len(decoded)) > s.maxBytes {
		s.logger.Printf("upload %q: %d bytes exceeds limit %d", up.Filename, len(decoded), s.maxBytes)
		return nil, "", &ParseError{Filename: up.Filename, Cause: fmt.Errorf("upload exceeds %d bytes", s.maxBytes)}
	}

	var d *dataset.Dataset
	if isCSV {
		d, err = dataset.ParseCSV(bytes.NewReader(decoded))
	} else {
		d, err = dataset.ParseExcel(decoded)
	}
	if err != nil {
		// cause stays out of the user message
		s.logger.Printf("upload %q: parse: %v", up.Filename, err)
		return nil, "", &ParseError{Filename: up.Filename, Cause: err}
	}
	return d, fmt.Sprintf("File %q loaded successfully!", up.Filename), nil
}

// FromURL fetches a link and parses its body as delimited text. Every
// failure mode maps to FetchError, which carries the cause text through
// to the user.
func (s *Service) FromURL(ctx context.Context, rawURL string) (*dataset.Dataset, string, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Cause: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Cause: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &FetchError{URL: rawURL, Cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	body := io.Reader(resp.Body)
	if s.maxBytes > 0 {
		body = io.LimitReader(resp.Body, s.maxBytes)
	}
	d, err := dataset.ParseCSV(body)
	if err != nil {
		return nil, "", &FetchError{URL: rawURL, Cause: err}
	}
	s.logger.Printf("fetched %q: %d rows, %d cols in %s", rawURL, d.NumRows(), d.NumCols(), time.Since(start).Round(time.Millisecond))
	return d, "Data loaded successfully from link!", nil
}
