package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"molecule-browser/internal/catalog"
	"molecule-browser/internal/infra/logx"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000"

// ErrNoToken is returned by every call made without an API token.
var ErrNoToken = errors.New("api token empty")

type Client struct {
	http    *http.Client
	base    string
	token   string
	metrics *Metrics
}

// New creates a client using the retrying, rate-limited transport.
func New(base, token string, opts TransportOptions) *Client {
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics()
	}
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	rt := NewRetryingLimiterTransport(opts)
	return &Client{
		http:    &http.Client{Transport: rt},
		base:    base,
		token:   token,
		metrics: opts.Metrics,
	}
}

// MetricsSnapshot returns the transport counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c.metrics == nil {
		return MetricsSnapshot{HostCounts: map[string]int64{}}
	}
	return c.metrics.Snapshot()
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.base }

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	if c.token == "" {
		return nil, ErrNoToken
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	return req, nil
}

func (c *Client) do(req *http.Request, op string, out any, okStatus ...int) error {
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	ok := false
	for _, s := range okStatus {
		if res.StatusCode == s {
			ok = true
			break
		}
	}
	if !ok {
		apiErr := decodeAPIError(op, res)
		logx.Warnf("%s failed: %s", op, apiErr.Error())
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode: %w", op, err)
	}
	return nil
}

// ---------- Molecules ----------

// ListOpts narrows the listing request. Search is forwarded as the optional
// search query parameter; the server is free to ignore it.
type ListOpts struct {
	Search string
}

// ListMolecules fetches the complete record collection.
func (c *Client) ListMolecules(ctx context.Context, opt ListOpts) ([]catalog.Record, error) {
	u, err := url.Parse(c.base + "/api/molecules/")
	if err != nil {
		return nil, err
	}
	if s := strings.TrimSpace(opt.Search); s != "" {
		q := u.Query()
		q.Set("search", s)
		u.RawQuery = q.Encode()
	}
	req, err := c.newRequest(ctx, http.MethodGet, strings.TrimPrefix(u.String(), c.base), nil)
	if err != nil {
		return nil, err
	}
	var out []catalog.Record
	if err := c.do(req, "molecules.list", &out, http.StatusOK); err != nil {
		return nil, err
	}
	if out == nil {
		out = []catalog.Record{}
	}
	logx.Debugf("molecules.list: %d records (search=%q)", len(out), opt.Search)
	return out, nil
}

// GetMolecule fetches a single record with all computed properties.
func (c *Client) GetMolecule(ctx context.Context, id int) (catalog.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/molecules/%d/", id), nil)
	if err != nil {
		return catalog.Record{}, err
	}
	var out catalog.Record
	if err := c.do(req, "molecules.get", &out, http.StatusOK); err != nil {
		return catalog.Record{}, err
	}
	return out, nil
}

// CreateMolecule submits a single record and returns the stored version.
func (c *Client) CreateMolecule(ctx context.Context, in catalog.NewRecord) (catalog.Record, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return catalog.Record{}, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/molecules/", bytes.NewReader(body))
	if err != nil {
		return catalog.Record{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	var out catalog.Record
	if err := c.do(req, "molecules.create", &out, http.StatusCreated, http.StatusOK); err != nil {
		return catalog.Record{}, err
	}
	return out, nil
}

type uploadResp struct {
	Message string `json:"message"`
}

// UploadSpreadsheet sends an .xlsx file for bulk creation and returns the
// server's confirmation message.
func (c *Client) UploadSpreadsheet(ctx context.Context, filename string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return "", fmt.Errorf("molecules.upload: read file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/molecules/upload_excel/", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	var out uploadResp
	if err := c.do(req, "molecules.upload", &out, http.StatusOK, http.StatusCreated); err != nil {
		return "", err
	}
	return out.Message, nil
}
