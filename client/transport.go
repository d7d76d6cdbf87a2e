// api/client/transport.go
package client

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Transport delivers one serialized batch to the ingestion endpoint. The
// dispatcher depends only on this interface; which implementation backs it
// is decided once at session construction.
type Transport interface {
	Send(ctx context.Context, body []byte) error
}

// FetchTransport is the plain blocking delivery path: one POST, success
// iff the server answered 2xx.
type FetchTransport struct {
	Endpoint string
	Client   *http.Client
}

func NewFetchTransport(endpoint string, client *http.Client) *FetchTransport {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FetchTransport{Endpoint: endpoint, Client: client}
}

func (t *FetchTransport) Send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build analytics request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("analytics delivery failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analytics endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

// BeaconTransport is the fire-and-forget path for teardown contexts: Send
// hands the batch to a background goroutine and reports success
// immediately, like a browser beacon that survives navigation. Errors on
// the wire are invisible, so beacon-sent batches are never retried.
type BeaconTransport struct {
	fetch *FetchTransport
	wg    sync.WaitGroup
}

func NewBeaconTransport(endpoint string, client *http.Client) *BeaconTransport {
	return &BeaconTransport{fetch: NewFetchTransport(endpoint, client)}
}

func (t *BeaconTransport) Send(_ context.Context, body []byte) error {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = t.fetch.Send(ctx, body)
	}()
	return nil
}

// Wait blocks until all in-flight beacon sends have finished. Callers
// tearing down a process should wait so final batches get out.
func (t *BeaconTransport) Wait() {
	t.wg.Wait()
}

// NewTransport picks the delivery path: beacon-style when available,
// otherwise the blocking fetch path.
func NewTransport(endpoint string, client *http.Client, disableBeacon bool) Transport {
	if disableBeacon {
		return NewFetchTransport(endpoint, client)
	}
	return NewBeaconTransport(endpoint, client)
}
