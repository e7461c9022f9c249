package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	// Stdin names standard input as an input.
	Stdin = "-"

	fetchTimeout    = 2 * time.Minute
	maxDocumentSize = 32 << 20
	userAgent       = "ttml2amll/1.0"
	acceptTTML      = "application/ttml+xml, application/xml;q=0.9, text/xml;q=0.8, */*;q=0.5"
)

// ProgressFunc is called with (bytesRead, totalBytes) while a remote
// document downloads. totalBytes is -1 when the server sends no length.
type ProgressFunc func(bytesRead, totalBytes int64)

// progressReader wraps an io.Reader and reports progress.
type progressReader struct {
	reader   io.Reader
	total    int64
	read     int64
	callback ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	pr.read += int64(n)
	if pr.callback != nil && n > 0 {
		pr.callback(pr.read, pr.total)
	}
	return n, err
}

// StatusError is returned when a server answers with a non-200 status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("server returned status %d", e.Code)
	}
	return fmt.Sprintf("server returned status %d: %s", e.Code, e.Body)
}

// Retryable reports whether a failed fetch may succeed when repeated.
// Client errors other than 408 and 429 are final, and so is cancellation.
func Retryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusRequestTimeout || se.Code == http.StatusTooManyRequests
	}
	return true
}

// IsRemote reports whether input is an http or https URL.
func IsRemote(input string) bool {
	u, err := url.Parse(input)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// BaseName returns the name an output file for input should carry, without
// extension. It is empty for Stdin.
func BaseName(input string) string {
	if input == Stdin {
		return ""
	}
	base := filepath.Base(input)
	if IsRemote(input) {
		u, _ := url.Parse(input)
		base = path.Base(u.Path)
		if base == "/" || base == "." {
			base = u.Hostname()
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Read returns the document named by input: a local path, Stdin or an
// http(s) URL.
func Read(ctx context.Context, input string, stdin io.Reader, progress ProgressFunc) (string, error) {
	switch {
	case input == Stdin:
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(io.LimitReader(stdin, maxDocumentSize+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return checkSize("stdin", data)
	case IsRemote(input):
		return Fetch(ctx, input, progress)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}

// Fetch downloads a TTML document over HTTP.
func Fetch(ctx context.Context, rawURL string, progress ProgressFunc) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", acceptTTML)
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	body := &progressReader{
		reader:   io.LimitReader(resp.Body, maxDocumentSize+1),
		total:    resp.ContentLength,
		callback: progress,
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return checkSize(rawURL, data)
}

func checkSize(name string, data []byte) (string, error) {
	if len(data) > maxDocumentSize {
		return "", fmt.Errorf("%s: document larger than %d bytes", name, maxDocumentSize)
	}
	return string(data), nil
}
