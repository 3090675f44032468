package updater

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/segmentio/encoding/json"
)

// Document is one raw JSON document of a fetched payload.
type Document = json.RawMessage

// Fetcher retrieves the documents at a URL and hands each to handle in
// order. A handle error stops the fetch and is returned.
type Fetcher interface {
	Fetch(ctx context.Context, url string, handle func(Document) error) error
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, url string, handle func(Document) error) error

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, url string, handle func(Document) error) error {
	return f(ctx, url, handle)
}

// HTTPFetcher GETs a URL whose body is a JSON array of documents or a
// single JSON object.
type HTTPFetcher struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client

	// Header is added to every request.
	Header http.Header
}

// Fetch implements Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string, handle func(Document) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("updater: build request: %w", err)
	}
	for k, v := range f.Header {
		req.Header[k] = v
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("updater: get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s from %s", ErrUnexpectedStatus, resp.Status, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("updater: read %s: %w", url, err)
	}
	return decodeDocuments(body, handle)
}

// decodeDocuments splits body into documents.
func decodeDocuments(body []byte, handle func(Document) error) error {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	if body[0] != '[' {
		if !json.Valid(body) {
			return fmt.Errorf("%w: not a JSON document", ErrInvalidPayload)
		}
		return handle(Document(body))
	}

	var docs []Document
	if err := json.Unmarshal(body, &docs); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	for _, doc := range docs {
		if err := handle(doc); err != nil {
			return err
		}
	}
	return nil
}
