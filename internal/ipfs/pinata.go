// internal/ipfs/pinata.go
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/javajoker/story-mcp/internal/config"
)

var ErrNotConfigured = errors.New("pinata JWT is not configured")

// Client pins content through the Pinata pinning API.
type Client struct {
	apiURL     string
	gatewayURL string
	jwt        string
	client     *http.Client
}

// PinResult is the pinning service's answer for one object.
type PinResult struct {
	CID       string `json:"IpfsHash"`
	Size      int64  `json:"PinSize"`
	Timestamp string `json:"Timestamp"`
}

func NewClient(cfg config.IPFSConfig) *Client {
	timeout := cfg.UploadTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiURL:     strings.TrimRight(cfg.PinataAPIURL, "/"),
		gatewayURL: strings.TrimRight(cfg.GatewayURL, "/"),
		jwt:        cfg.PinataJWT,
		client:     &http.Client{Timeout: timeout},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.jwt != ""
}

// GatewayURL returns an HTTP URL for cid on the configured gateway.
func (c *Client) GatewayURL(cid string) string {
	return fmt.Sprintf("%s/ipfs/%s", c.gatewayURL, cid)
}

// PinJSON pins raw JSON bytes. The bytes are sent as pinataContent so the
// pinned document is the same JSON the caller hashed.
func (c *Client) PinJSON(ctx context.Context, name string, content json.RawMessage) (*PinResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]interface{}{
		"pinataContent":  content,
		"pinataMetadata": map[string]string{"name": name},
		"pinataOptions":  map[string]int{"cidVersion": 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinJSONToIPFS", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// PinFile streams data as a multipart upload.
func (c *Client) PinFile(ctx context.Context, name string, data io.Reader) (*PinResult, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		defer pw.Close()
		part, err := writer.CreateFormFile("file", name)
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, data); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("pinataMetadata", fmt.Sprintf(`{"name":%q}`, name)); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = writer.Close()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/pinning/pinFileToIPFS", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*PinResult, error) {
	req.Header.Set("Authorization", "Bearer "+c.jwt)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pinata request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if len(body) == 0 {
			return nil, fmt.Errorf("pinata pin failed: %s", resp.Status)
		}
		return nil, fmt.Errorf("pinata pin failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var result PinResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode pinata response: %w", err)
	}
	if result.CID == "" {
		return nil, fmt.Errorf("pinata returned empty hash")
	}
	return &result, nil
}
