// Package fetch downloads remote images for preview.
//
// Responses are transparently decompressed (gzip and zstd content encodings),
// limited in size, restricted to supported image media types, and memoized in
// a small LRU so repeated hovers over the same URL do not hit the network.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/klauspost/compress/gzhttp"

	"github.com/ironsheep/quick-view-mcp/internal/failure"
	"github.com/ironsheep/quick-view-mcp/internal/imaging"
)

// Defaults for Options fields left at zero.
const (
	DefaultTimeout       = 2 * time.Second
	DefaultMaxPayloadKiB = 8096
	DefaultMemoSize      = 16
)

// Options configures a Client.
type Options struct {
	Timeout       time.Duration
	MaxPayloadKiB int
	MemoSize      int

	// Transport overrides the HTTP transport. It is wrapped for content decoding.
	Transport http.RoundTripper
}

// Response is a downloaded image.
type Response struct {
	MIME   string
	Format imaging.Format
	Data   []byte
}

// Client fetches remote images. It is safe for concurrent use.
type Client struct {
	http       *http.Client
	maxPayload int64
	memo       *lru.Cache[string, *Response]
}

// New creates a Client.
func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxPayloadKiB <= 0 {
		opts.MaxPayloadKiB = DefaultMaxPayloadKiB
	}
	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	memo, _ := lru.New[string, *Response](opts.MemoSize)
	return &Client{
		http: &http.Client{
			Transport: gzhttp.Transport(transport),
			Timeout:   opts.Timeout,
		},
		maxPayload: int64(opts.MaxPayloadKiB) * 1024,
		memo:       memo,
	}
}

// Get downloads url. Redirects are followed. Failures are *failure.Error values
// of kind KindFetch, including responses that are not a supported image type.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	if r, ok := c.memo.Get(url); ok {
		return r, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, failure.Wrap(failure.KindFetch, "build request", err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, failure.Wrap(failure.KindFetch, "request "+url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, failure.New(failure.KindFetch, "%s returned %s", url, resp.Status)
	}
	mime := resp.Header.Get("Content-Type")
	format := imaging.FormatFromMIME(mime)
	if format == imaging.Unsupported {
		return nil, failure.New(failure.KindFetch, "media type %q is not supported", mime)
	}
	if resp.ContentLength > c.maxPayload {
		return nil, failure.New(failure.KindFetch, "refusing to download %d bytes, limit is %d", resp.ContentLength, c.maxPayload)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxPayload+1))
	if err != nil {
		return nil, failure.Wrap(failure.KindFetch, "read body", err)
	}
	if int64(len(data)) > c.maxPayload {
		return nil, failure.New(failure.KindFetch, "payload exceeds %d bytes", c.maxPayload)
	}
	if len(data) == 0 {
		return nil, failure.New(failure.KindFetch, "empty payload")
	}

	r := &Response{MIME: format.MIME(), Format: format, Data: data}
	c.memo.Add(url, r)
	return r, nil
}

// Purge drops all memoized responses.
func (c *Client) Purge() {
	c.memo.Purge()
}

// Remove drops the memoized response for url.
func (c *Client) Remove(url string) {
	c.memo.Remove(url)
}

func (r *Response) String() string {
	return fmt.Sprintf("%s (%d bytes)", r.MIME, len(r.Data))
}
