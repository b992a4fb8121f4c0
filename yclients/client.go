package yclients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.yclients.com/api/v1"

// acceptHeader pins the versioned media type the API requires on every call.
const acceptHeader = "application/vnd.yclients.v2+json"

// Client talks to the YClients API for a single company account. Authenticate
// must be called once before any resource fetch; without a user token the
// Authorization header is malformed and every call would fail.
type Client struct {
	baseURL      string
	partnerToken string
	userToken    string
	companyID    string
	endpoints    map[string]string
	http         *http.Client
}

func New(baseURL, partnerToken, companyID string, endpoints map[string]string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		partnerToken: partnerToken,
		companyID:    companyID,
		endpoints:    endpoints,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type authResponse struct {
	Success bool `json:"success"`
	Data    struct {
		UserToken string `json:"user_token"`
	} `json:"data"`
}

// Authenticate exchanges login/password plus the partner token for a user
// session token. A failure here is fatal for the whole process: no token
// means no valid headers for any subsequent call.
func (c *Client) Authenticate(ctx context.Context, login, password string) error {
	payload, err := json.Marshal(map[string]string{
		"login":    login,
		"password": password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/auth", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.partnerToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("auth failed: status %d: %s", resp.StatusCode, string(body))
	}

	var ar authResponse
	if err := json.NewDecoder(resp.Body).Decode(&ar); err != nil {
		return fmt.Errorf("auth decode: %w", err)
	}
	if ar.Data.UserToken == "" {
		return fmt.Errorf("auth response contained no user token")
	}

	c.userToken = ar.Data.UserToken
	return nil
}

// SetUserToken injects a session token directly, bypassing Authenticate.
// Used by tests and by callers that cache tokens externally.
func (c *Client) SetUserToken(token string) {
	c.userToken = token
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s, User %s", c.partnerToken, c.userToken))
}

// Default endpoint paths, relative to the API base. {company_id} is
// substituted at build time. Overrides come from config/resources.yaml.
var defaultEndpoints = map[string]string{
	"staff":              "/company/{company_id}/staff/",
	"schedule":           "/company/{company_id}/staff/schedule",
	"service_categories": "/company/{company_id}/service_categories/",
	"services":           "/company/{company_id}/services/",
	"goods":              "/goods/{company_id}",
	"records":            "/records/{company_id}",
	"clients_search":     "/company/{company_id}/clients/search",
}

// Endpoint resolves a resource name to a full URL, applying any configured
// override. Overrides may be full URLs or base-relative paths.
func (c *Client) Endpoint(resource string) string {
	path, ok := c.endpoints[resource]
	if !ok || path == "" {
		path = defaultEndpoints[resource]
	}
	path = strings.ReplaceAll(path, "{company_id}", c.companyID)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + path
}

// ScheduleEndpoint builds the date-ranged staff schedule URL.
func (c *Client) ScheduleEndpoint(from, to time.Time) string {
	return fmt.Sprintf("%s?start_date=%s&end_date=%s",
		c.Endpoint("schedule"), from.Format("2006-01-02"), to.Format("2006-01-02"))
}
