// Package inpaint talks to an IOPaint server for object removal and
// background removal.
package inpaint

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	eimage "magic-eraser/internal/image"
)

const (
	DefaultBaseURL = "http://localhost:8080"
	DefaultTimeout = 120 * time.Second

	inpaintPath = "/api/v1/inpaint"
	pluginPath  = "/api/v1/run_plugin_gen_image"
	modelPath   = "/api/v1/model"

	maxErrorBody = 4 << 10
)

// ErrMaskSize is returned when the mask and image dimensions differ.
var ErrMaskSize = errors.New("mask size does not match image size")

// Inpainter removes the masked region of an image.
type Inpainter interface {
	Inpaint(ctx context.Context, src *eimage.Asset, mask image.Image) (*eimage.Asset, error)
}

// BackgroundRemover cuts the subject out of an image, leaving a transparent
// background.
type BackgroundRemover interface {
	RemoveBackground(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error)
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("iopaint: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("iopaint: %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Client is an IOPaint HTTP client.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry
}

// NewClient creates a client for the server at baseURL. An empty baseURL
// uses DefaultBaseURL and a non-positive timeout uses DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logrus.WithField("component", "iopaint"),
	}
}

// BaseURL returns the server address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// WithBaseURL returns a client for another server sharing the same
// transport settings.
func (c *Client) WithBaseURL(baseURL string) *Client {
	if baseURL == "" {
		return c
	}
	clone := *c
	clone.baseURL = strings.TrimRight(baseURL, "/")
	return &clone
}

// Inpaint sends src and a white-on-black mask of the same size and returns
// the filled-in image.
func (c *Client) Inpaint(ctx context.Context, src *eimage.Asset, mask image.Image) (*eimage.Asset, error) {
	if src == nil || src.Image == nil {
		return nil, errors.New("inpaint: no source image")
	}
	if mask.Bounds().Size() != src.Image.Bounds().Size() {
		return nil, fmt.Errorf("inpaint: %w: mask %v, image %v", ErrMaskSize, mask.Bounds().Size(), src.Image.Bounds().Size())
	}
	maskPNG, err := eimage.EncodePNG(mask)
	if err != nil {
		return nil, fmt.Errorf("inpaint: %w", err)
	}

	req := NewRequest(sourceDataURL(src), eimage.DataURL("image/png", maskPNG), src.Width(), src.Height())
	start := time.Now()
	body, err := c.post(ctx, inpaintPath, req)
	if err != nil {
		return nil, fmt.Errorf("inpaint: %w", err)
	}
	c.log.WithFields(logrus.Fields{
		"image":    src.Name,
		"width":    src.Width(),
		"height":   src.Height(),
		"bytes":    len(body),
		"duration": time.Since(start),
	}).Debug("Inpaint completed")

	result, err := eimage.Decode(resultName(src.Name), body)
	if err != nil {
		return nil, fmt.Errorf("inpaint: %w", err)
	}
	return result, nil
}

// RemoveBackground runs the RemoveBG plugin on src. The server may answer
// with image bytes or with a base64 string or data URL; both are accepted.
func (c *Client) RemoveBackground(ctx context.Context, src *eimage.Asset) (*eimage.Asset, error) {
	if src == nil || src.Image == nil {
		return nil, errors.New("remove background: no source image")
	}
	req := PluginRequest{
		Name:   "RemoveBG",
		Image:  sourceDataURL(src),
		Clicks: [][]int{},
		Scale:  1.0,
	}
	body, err := c.post(ctx, pluginPath, req)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}

	result, err := eimage.Decode(resultName(src.Name), body)
	if err == nil {
		return result, nil
	}
	decoded, b64err := decodeBase64Payload(body)
	if b64err != nil {
		return nil, fmt.Errorf("remove background: unrecognized response: %w", err)
	}
	result, err = eimage.Decode(resultName(src.Name), decoded)
	if err != nil {
		return nil, fmt.Errorf("remove background: %w", err)
	}
	return result, nil
}

// Ping checks that the server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return &APIError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "image/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode,
		}).Warn("IOPaint request failed")
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// sourceDataURL prefers the original encoded bytes and falls back to PNG.
func sourceDataURL(a *eimage.Asset) string {
	if len(a.Data) > 0 {
		return a.DataURL()
	}
	data, err := eimage.EncodePNG(a.Image)
	if err != nil {
		return ""
	}
	return eimage.DataURL("image/png", data)
}

func decodeBase64Payload(body []byte) ([]byte, error) {
	text := strings.Trim(strings.TrimSpace(string(body)), `"`)
	if i := strings.IndexByte(text, ','); i >= 0 {
		text = text[i+1:]
	}
	return base64.StdEncoding.DecodeString(text)
}

func resultName(name string) string {
	if name == "" {
		return "result.png"
	}
	return "erased-" + name
}
