package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ZohoClient talks to the Zoho CRM REST API. Access tokens are minted from
// a long-lived refresh token and cached until shortly before expiry.
type ZohoClient struct {
	baseURL      string
	authURL      string
	clientID     string
	clientSecret string
	refreshToken string
	httpClient   *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// ZohoCredentials holds the OAuth client and refresh token.
type ZohoCredentials struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// NewZohoClient creates a client for the given API and accounts endpoints.
func NewZohoClient(baseURL, authURL string, creds ZohoCredentials) *ZohoClient {
	return &ZohoClient{
		baseURL:      baseURL,
		authURL:      authURL,
		clientID:     creds.ClientID,
		clientSecret: creds.ClientSecret,
		refreshToken: creds.RefreshToken,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *ZohoClient) Name() string { return "zoho" }

// CreateLead creates a lead, reporting a duplicate when the platform
// already holds a record for the same contact.
func (c *ZohoClient) CreateLead(ctx context.Context, lead Lead) (*LeadResult, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	token, err := c.token(ctx)
	if err != nil {
		return nil, fmt.Errorf("authenticating: %w", err)
	}

	record := map[string]any{
		"Email":       lead.Email,
		"First_Name":  lead.FirstName,
		"Last_Name":   lead.LastName,
		"Company":     lead.Company,
		"Phone":       lead.Phone,
		"Lead_Source": lead.Source,
	}
	body, err := json.Marshal(map[string]any{"data": []any{record}})
	if err != nil {
		return nil, fmt.Errorf("marshaling lead: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crm/v2/Leads", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Zoho-oauthtoken "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var parsed struct {
		Data []struct {
			Code    string `json:"code"`
			Message string `json:"message"`
			Details struct {
				ID string `json:"id"`
			} `json:"details"`
		} `json:"data"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil || len(parsed.Data) == 0 {
		return nil, fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(respBody))
	}

	entry := parsed.Data[0]
	switch entry.Code {
	case "SUCCESS":
		return &LeadResult{Status: StatusCreated, LeadID: entry.Details.ID}, nil
	case "DUPLICATE_DATA":
		return &LeadResult{Status: StatusDuplicate, LeadID: entry.Details.ID}, nil
	default:
		return nil, fmt.Errorf("lead rejected: %s (%s)", entry.Message, entry.Code)
	}
}

// token returns a cached access token, refreshing when within a minute of
// expiry.
func (c *ZohoClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-time.Minute)) {
		return c.accessToken, nil
	}

	form := url.Values{
		"refresh_token": {c.refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"refresh_token"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.authURL+"/oauth/v2/token", bytes.NewBufferString(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token refresh failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parsing token response: %w", err)
	}
	if parsed.Error != "" || parsed.AccessToken == "" {
		return "", fmt.Errorf("token refresh rejected: %s", parsed.Error)
	}

	c.accessToken = parsed.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(parsed.ExpiresIn) * time.Second)
	return c.accessToken, nil
}
