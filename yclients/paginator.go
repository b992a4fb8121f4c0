package yclients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"yclients_sync/models"
)

const pageSize = 100

// FetchAll walks one endpoint page by page and accumulates every item, in
// page order, item order preserved within a page. Pagination starts at page 1
// with a fixed page size of 100.
//
// A non-200 response stops pagination for this endpoint only: the status and
// body are logged and the items accumulated so far are returned without
// error. An empty or absent `data` field is the normal end-of-data signal.
// There is no retry or backoff; a transport-level failure is returned as an
// error to the caller.
//
// For POST, the optional base body (a field-selection filter, typically) is
// merged with the pagination parameters on every call.
func (c *Client) FetchAll(ctx context.Context, endpoint, method string, body map[string]any) ([]models.RawItem, error) {
	var all []models.RawItem

	for page := 1; ; page++ {
		req, err := c.buildPageRequest(ctx, endpoint, method, body, page)
		if err != nil {
			return all, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return all, fmt.Errorf("page %d: %w", page, err)
		}

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			log.Printf("API error on %s page %d: status %d: %s", endpoint, page, resp.StatusCode, string(respBody))
			break
		}

		items, err := decodePage(resp.Body)
		resp.Body.Close()
		if err != nil {
			return all, fmt.Errorf("page %d: decode: %w", page, err)
		}

		if len(items) == 0 {
			break
		}

		all = append(all, items...)
		log.Printf("Fetched %s page %d: %d items (total %d)", lastPathSegment(endpoint), page, len(items), len(all))
	}

	return all, nil
}

func (c *Client) buildPageRequest(ctx context.Context, endpoint, method string, body map[string]any, page int) (*http.Request, error) {
	if method == "POST" {
		merged := make(map[string]any, len(body)+2)
		for k, v := range body {
			merged[k] = v
		}
		merged["page"] = page
		merged["page_size"] = pageSize

		payload, err := json.Marshal(merged)
		if err != nil {
			return nil, err
		}
		req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		c.setHeaders(req)
		return req, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)
	return req, nil
}

type pageResponse struct {
	Data json.RawMessage `json:"data"`
}

// decodePage extracts the `data` array from one page response. Numbers are
// decoded via json.Number and rewritten to int64 where integral so that
// integer columns survive JSON decoding as integers.
func decodePage(r io.Reader) ([]models.RawItem, error) {
	var pr pageResponse
	if err := json.NewDecoder(r).Decode(&pr); err != nil {
		return nil, err
	}
	if len(pr.Data) == 0 || string(pr.Data) == "null" {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(pr.Data))
	dec.UseNumber()
	var raw []any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	items := make([]models.RawItem, 0, len(raw))
	for _, v := range raw {
		if m, ok := coerceNumbers(v).(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// coerceNumbers walks a decoded JSON tree converting json.Number leaves to
// int64 when integral, float64 otherwise.
func coerceNumbers(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case map[string]any:
		for k, elem := range val {
			val[k] = coerceNumbers(elem)
		}
		return val
	case []any:
		for i, elem := range val {
			val[i] = coerceNumbers(elem)
		}
		return val
	default:
		return v
	}
}

func lastPathSegment(endpoint string) string {
	if i := strings.Index(endpoint, "?"); i >= 0 {
		endpoint = endpoint[:i]
	}
	endpoint = strings.TrimRight(endpoint, "/")
	if i := strings.LastIndex(endpoint, "/"); i >= 0 {
		return endpoint[i+1:]
	}
	return endpoint
}
