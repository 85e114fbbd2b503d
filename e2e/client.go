// Package e2e drives a real Docker daemon through the HTTP API.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"time"

	"github.com/nully0x/bitcoin-regtest-tui/pkg/http/response"
	networkshttp "github.com/nully0x/bitcoin-regtest-tui/pkg/networks/http"
)

// TestClient represents a test API client
type TestClient struct {
	baseURL string
	http    *nethttp.Client
}

// NewTestClient creates a client for the API mounted at baseURL
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		baseURL: baseURL,
		http:    &nethttp.Client{Timeout: 5 * time.Minute},
	}
}

// APIError is a non-2xx response
type APIError struct {
	Status int
	Body   response.Response
}

func (e *APIError) Error() string {
	if e.Body.Error != nil {
		return fmt.Sprintf("status %d: %s: %s", e.Status, e.Body.Error.Type, e.Body.Error.Message)
	}
	return fmt.Sprintf("status %d", e.Status)
}

// DoRequest sends body as JSON and decodes a successful response into out
func (c *TestClient) DoRequest(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := nethttp.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil || resp.StatusCode == nethttp.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *TestClient) CreateNetwork(req networkshttp.CreateNetworkRequest) (*networkshttp.NetworkResponse, error) {
	var out networkshttp.NetworkResponse
	return &out, c.DoRequest(nethttp.MethodPost, "/networks", req, &out)
}

func (c *TestClient) StartNetwork(name string) (*networkshttp.NetworkResponse, error) {
	var out networkshttp.NetworkResponse
	return &out, c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/start", nil, &out)
}

func (c *TestClient) DeleteNetwork(name string) error {
	return c.DoRequest(nethttp.MethodDelete, "/networks/"+name, nil, nil)
}

func (c *TestClient) MineBlocks(name string, blocks int) ([]string, error) {
	var out networkshttp.MineBlocksResponse
	err := c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/mine", networkshttp.MineBlocksRequest{Blocks: blocks}, &out)
	return out.Hashes, err
}

func (c *TestClient) FundWallet(name string, req networkshttp.FundWalletRequest) (string, error) {
	var out networkshttp.TxResponse
	err := c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/fund", req, &out)
	return out.TxID, err
}

func (c *TestClient) OpenChannel(name string, req networkshttp.OpenChannelRequest) (string, error) {
	var out networkshttp.TxResponse
	err := c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/channels", req, &out)
	return out.TxID, err
}

func (c *TestClient) SendPayment(name string, req networkshttp.SendPaymentRequest) (string, error) {
	var out networkshttp.TxResponse
	err := c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/payments", req, &out)
	return out.PaymentHash, err
}

func (c *TestClient) SyncChain(name string) (int, error) {
	var out networkshttp.SyncResponse
	err := c.DoRequest(nethttp.MethodPost, "/networks/"+name+"/sync/chain", nil, &out)
	return out.Count, err
}
