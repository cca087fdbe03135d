// Package cloudimage wraps the Cloudinary upload REST API. The service only
// needs one capability from it: upload a file under a deterministic public id
// and get back a URL for a 250x250 avatar rendition.
package cloudimage

import (
	"bytes"
	"context"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

const (
	defaultAPIBase      = "https://api.cloudinary.com"
	defaultDeliveryBase = "https://res.cloudinary.com"
	publicIDPrefix      = "hw13_1/"
	maxAvatarBytes      = 5 << 20
)

// Client calls the Cloudinary image upload endpoint.
type Client struct {
	cloudName    string
	apiKey       string
	apiSecret    string
	apiBase      string
	deliveryBase string
	httpClient   *http.Client
	now          func() time.Time
}

// Option overrides client defaults, mainly for tests.
type Option func(*Client)

// WithAPIBase points the client at a different upload endpoint.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithDeliveryBase points avatar URLs at a different delivery host.
func WithDeliveryBase(base string) Option {
	return func(c *Client) { c.deliveryBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Cloudinary client for the given account.
func New(cloudName, apiKey, apiSecret string, opts ...Option) *Client {
	c := &Client{
		cloudName:    cloudName,
		apiKey:       apiKey,
		apiSecret:    apiSecret,
		apiBase:      defaultAPIBase,
		deliveryBase: defaultDeliveryBase,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Enabled reports whether credentials were configured.
func (c *Client) Enabled() bool {
	return c.cloudName != "" && c.apiKey != "" && c.apiSecret != ""
}

// AvatarPublicID derives the stable public id for a user's avatar from their
// email, so re-uploads overwrite the previous image.
func AvatarPublicID(email string) string {
	sum := sha256.Sum256([]byte(email))
	return publicIDPrefix + hex.EncodeToString(sum[:])[:12]
}

type uploadResponse struct {
	PublicID  string `json:"public_id"`
	Version   int64  `json:"version"`
	SecureURL string `json:"secure_url"`
}

// Upload pushes an image to Cloudinary under publicID, overwriting any
// previous upload, and returns the URL of the 250x250 fill rendition.
func (c *Client) Upload(ctx context.Context, file io.Reader, publicID string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if len(data) > maxAvatarBytes {
		return "", fmt.Errorf("upload exceeds %d bytes", maxAvatarBytes)
	}
	if kind := mimetype.Detect(data); !strings.HasPrefix(kind.String(), "image/") {
		return "", fmt.Errorf("unsupported content type %s", kind.String())
	}

	timestamp := strconv.FormatInt(c.now().Unix(), 10)
	body, contentType, err := c.buildForm(data, publicID, timestamp)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/image/upload", c.apiBase, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("cloudinary request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", &APIError{Status: res.StatusCode, Body: string(msg)}
	}

	var out uploadResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode cloudinary response: %w", err)
	}
	return c.avatarURL(publicID, out.Version), nil
}

// buildForm assembles the signed multipart request body. Cloudinary signs the
// alphabetically ordered non-credential params joined with '&', followed by
// the API secret, hashed with SHA-1.
func (c *Client) buildForm(data []byte, publicID, timestamp string) (*bytes.Buffer, string, error) {
	toSign := fmt.Sprintf("overwrite=true&public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	digest := sha1.Sum([]byte(toSign))

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	fields := map[string]string{
		"api_key":   c.apiKey,
		"timestamp": timestamp,
		"public_id": publicID,
		"overwrite": "true",
		"signature": hex.EncodeToString(digest[:]),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	fw, err := mw.CreateFormFile("file", "file")
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

func (c *Client) avatarURL(publicID string, version int64) string {
	return fmt.Sprintf("%s/%s/image/upload/c_fill,h_250,w_250/v%d/%s",
		c.deliveryBase, c.cloudName, version, publicID)
}

// APIError is a non-2xx reply from the upload endpoint.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("cloudinary upload failed: status %d", e.Status)
}
