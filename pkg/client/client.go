// Package client is a Go client for the REST API of the contacts service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"gitlab.com/dirk.krummacker/contact-directory/pkg/model"
)

// APIError is returned for every response with an unexpected status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// Client talks to one contacts service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client for the service at baseURL, e.g. "http://localhost:8080". A nil httpClient
// means http.DefaultClient.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Create stores a new contact.
func (c *Client) Create(ctx context.Context, in model.ContactInput) (model.Contact, error) {
	var contact model.Contact
	err := c.do(ctx, http.MethodPost, "/contatos", in, http.StatusCreated, &contact)
	return contact, err
}

// List returns all contacts ordered by name.
func (c *Client) List(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	err := c.do(ctx, http.MethodGet, "/contatos", nil, http.StatusOK, &contacts)
	return contacts, err
}

// Get returns a single contact.
func (c *Client) Get(ctx context.Context, id string) (model.Contact, error) {
	var contact model.Contact
	err := c.do(ctx, http.MethodGet, "/contatos/"+url.PathEscape(id), nil, http.StatusOK, &contact)
	return contact, err
}

// Update replaces all values of a contact.
func (c *Client) Update(ctx context.Context, id string, in model.ContactInput) (model.Contact, error) {
	var contact model.Contact
	err := c.do(ctx, http.MethodPut, "/contatos/"+url.PathEscape(id), in, http.StatusOK, &contact)
	return contact, err
}

// Delete removes a contact.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/contatos/"+url.PathEscape(id), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body any, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}
	if res.StatusCode != expected {
		apiErr := &APIError{StatusCode: res.StatusCode}
		var errBody struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(resBody, &errBody) == nil {
			apiErr.Message = errBody.Message
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
