package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/vanshika/netviz/internal/domain"
)

// maxRemoteBody caps the dataset payload read from a remote endpoint.
const maxRemoteBody = 64 << 20

// RemoteSource fetches datasets from an HTTP endpoint serving
// GET <endpoint>?dataset=<name>.
type RemoteSource struct {
	endpoint string
	client   *http.Client
}

// NewRemoteSource validates endpoint and returns a RemoteSource. A nil client
// gets a default one with the given timeout.
func NewRemoteSource(endpoint string, client *http.Client, timeout time.Duration) (*RemoteSource, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse remote endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("remote endpoint %q must be http or https", endpoint)
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &RemoteSource{endpoint: endpoint, client: client}, nil
}

func (s *RemoteSource) Kind() string { return KindRemote }

func (s *RemoteSource) Load(ctx context.Context, name string) (domain.Graph, error) {
	u, _ := url.Parse(s.endpoint)
	q := u.Query()
	q.Set("dataset", name)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.Graph{}, fmt.Errorf("fetch dataset %s: %w", name, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.Graph{}, fmt.Errorf("%w: %s", domain.ErrDatasetNotFound, name)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return domain.Graph{}, &StatusError{Dataset: name, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody+1))
	if err != nil {
		return domain.Graph{}, fmt.Errorf("read dataset %s: %w", name, err)
	}
	if len(body) > maxRemoteBody {
		return domain.Graph{}, fmt.Errorf("dataset %s exceeds %d bytes", name, maxRemoteBody)
	}
	return domain.DecodeGraph(body)
}

// Names returns nil; remote endpoints do not enumerate datasets.
func (s *RemoteSource) Names(context.Context) ([]string, error) {
	return nil, nil
}

// StatusError reports a non-2xx answer from a remote endpoint.
type StatusError struct {
	Dataset    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("fetch dataset %s: unexpected status %d", e.Dataset, e.StatusCode)
}

// IsStatus reports whether err is a StatusError carrying code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
