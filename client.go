package main

import (
	"compress/gzip"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// newGetRequest builds a GET request advertising the encodings decodeBody
// can undo. Setting Accept-Encoding by hand disables the transport's
// automatic gzip handling, so response bytes are cached as received.
func newGetRequest(rawUrl string) (*http.Request, error) {
	req, err := http.NewRequest(http.MethodGet, rawUrl, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Encoding", "gzip, br")
	return req, nil
}

// decodeBody returns a reader over the response body with any
// Content-Encoding undone.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "br":
		return brotli.NewReader(resp.Body), nil
	case "gzip":
		return gzip.NewReader(resp.Body)
	}
	return resp.Body, nil
}
