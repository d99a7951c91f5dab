// Package api is the HTTP client for the supplier compliance backend.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
	"github.com/sw33tLie/supplyscope/pkg/whttp"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 60 * time.Second
)

// Config controls how the client talks to the backend.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Proxy   string
	// Retries applies to every request made by this client. Leave it at zero
	// for anything that writes.
	Retries int
	Log     logrus.FieldLogger
}

type Client struct {
	baseURL string
	http    *retryablehttp.Client
	log     logrus.FieldLogger
}

func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	log := cfg.Log
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}

	hc, err := whttp.NewClient(whttp.Options{
		Timeout:  timeout,
		Proxy:    cfg.Proxy,
		RetryMax: cfg.Retries,
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: base, http: hc, log: log}, nil
}

// BaseURL returns the normalized backend root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ListSuppliers fetches every supplier.
func (c *Client) ListSuppliers(ctx context.Context) ([]supplier.Supplier, error) {
	res, err := c.do(ctx, "list suppliers", http.MethodGet, "/suppliers", nil)
	if err != nil {
		return nil, err
	}
	return supplier.ListFromJSON(res.BodyString), nil
}

// GetSupplier fetches one supplier by id.
func (c *Client) GetSupplier(ctx context.Context, id int) (supplier.Supplier, error) {
	res, err := c.do(ctx, "get supplier", http.MethodGet, "/suppliers/"+strconv.Itoa(id), nil)
	if err != nil {
		return supplier.Supplier{}, err
	}
	return supplier.FromJSON(gjson.Parse(res.BodyString)), nil
}

// CreateSupplier posts a new supplier. Backends that only acknowledge with a
// status message yield the submitted fields and a zero ID.
func (c *Client) CreateSupplier(ctx context.Context, d supplier.Draft) (supplier.Supplier, error) {
	res, err := c.do(ctx, "create supplier", http.MethodPost, "/suppliers", d)
	if err != nil {
		return supplier.Supplier{}, err
	}
	body := gjson.Parse(res.BodyString)
	if body.Get("id").Exists() {
		return supplier.FromJSON(body), nil
	}
	if msg := body.Get("message").String(); msg != "" {
		c.log.Debugf("create supplier: %s", msg)
	}
	return supplier.Supplier{
		Name:            d.Name,
		Country:         d.Country,
		ContractTerms:   supplier.TermsOf(d.ContractTerms.Map()),
		ComplianceScore: d.ComplianceScore,
		LastAudit:       d.LastAudit,
	}, nil
}

// CheckCompliance submits one compliance batch.
func (c *Client) CheckCompliance(ctx context.Context, p compliance.Payload) (compliance.Result, error) {
	res, err := c.do(ctx, "check compliance", http.MethodPost, "/suppliers/check-compliance", p)
	if err != nil {
		return compliance.Result{}, err
	}
	var out compliance.Result
	if err := json.Unmarshal([]byte(res.BodyString), &out); err != nil {
		return compliance.Result{}, &APIError{Op: "check compliance", StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return out, nil
}

// GetInsights fetches the narrative insights for a supplier. They are
// generated on every call.
func (c *Client) GetInsights(ctx context.Context, supplierID int) (string, error) {
	res, err := c.do(ctx, "get insights", http.MethodGet, "/suppliers/insights/"+strconv.Itoa(supplierID), nil)
	if err != nil {
		return "", err
	}
	return gjson.Get(res.BodyString, "insights").String(), nil
}

// GetComplianceRecords fetches the stored compliance history of a supplier.
func (c *Client) GetComplianceRecords(ctx context.Context, supplierID int) ([]compliance.Record, error) {
	res, err := c.do(ctx, "get compliance records", http.MethodGet, "/compliance_records/"+strconv.Itoa(supplierID), nil)
	if err != nil {
		return nil, err
	}
	records := []compliance.Record{}
	if strings.TrimSpace(res.BodyString) == "" || gjson.Parse(res.BodyString).Type == gjson.Null {
		return records, nil
	}
	if err := json.Unmarshal([]byte(res.BodyString), &records); err != nil {
		return nil, &APIError{Op: "get compliance records", StatusCode: res.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return records, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload interface{}) (*whttp.WHTTPRes, error) {
	req := &whttp.WHTTPReq{Method: method, URL: c.baseURL + path}
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: encode request: %w", op, err)
		}
		req.Body = body
	}

	start := time.Now()
	res, err := whttp.SendHTTPRequest(ctx, req, c.http)
	if err != nil {
		c.log.Debugf("%s %s failed: %v", method, req.URL, err)
		return nil, &APIError{Op: op, Err: err}
	}
	c.log.Debugf("%s %s -> %d in %s (request %s)", method, req.URL, res.StatusCode, time.Since(start).Round(time.Millisecond), res.RequestID)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{
			Op:         op,
			StatusCode: res.StatusCode,
			Detail:     extractDetail(res.BodyString),
			Title:      res.HTTPTitle,
		}
		if apiErr.Detail == "" && apiErr.Title != "" {
			c.log.Debugf("%s: HTML error page %q (request %s)", op, apiErr.Title, res.RequestID)
		}
		return nil, apiErr
	}
	return res, nil
}
