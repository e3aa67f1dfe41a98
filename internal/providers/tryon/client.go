package tryon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fitroom-server/internal/domain"
)

// Synthesis parameters sent with every job. The seed is pinned so the same
// model photo and garment always produce the same composite.
const (
	sampleCount   = 1
	stepCount     = 20
	guidanceScale = 2
	randomSeed    = 42

	defaultBaseURL = "https://levihsu-ootdiffusion.hf.space"
	defaultTimeout = 120 * time.Second
)

var categoryNames = map[domain.GarmentCategory]string{
	domain.GarmentUpper: "Upper-body",
	domain.GarmentLower: "Lower-body",
}

type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Client drives a remote gradio try-on space: it uploads the model photo and
// garment image, runs the synthesis endpoint, and downloads the composite to
// a temp file.
type Client struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

// fileRef is how gradio names an uploaded or generated file on the wire.
type fileRef struct {
	Path string            `json:"path"`
	URL  string            `json:"url,omitempty"`
	Name string            `json:"orig_name,omitempty"`
	Meta map[string]string `json:"meta,omitempty"`
}

type runRequest struct {
	Data []any `json:"data"`
}

type runResponse struct {
	Data []json.RawMessage `json:"data"`
}

type resultRecord struct {
	Image *fileRef `json:"image"`
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
		logger:  opts.Logger,
	}
}

// TryOn composites the garment at clothingPath onto the model photo at
// modelPath. It returns the path of a temp file holding the composite; the
// caller owns that file.
func (c *Client) TryOn(ctx context.Context, modelPath, clothingPath string, category domain.GarmentCategory) (string, error) {
	apiCategory, ok := categoryNames[category]
	if !ok {
		return "", fmt.Errorf("%w: unknown garment category %q", domain.ErrValidation, category)
	}

	modelRef, err := c.upload(ctx, modelPath)
	if err != nil {
		return "", fmt.Errorf("upload model photo: %w", err)
	}
	clothRef, err := c.upload(ctx, clothingPath)
	if err != nil {
		return "", fmt.Errorf("upload garment: %w", err)
	}

	result, err := c.run(ctx, modelRef, clothRef, apiCategory)
	if err != nil {
		return "", err
	}

	path, err := c.download(ctx, result)
	if err != nil {
		return "", fmt.Errorf("download composite: %w", err)
	}
	c.logger.Debug().Str("category", apiCategory).Str("result", path).Msg("try-on complete")
	return path, nil
}

func (c *Client) upload(ctx context.Context, path string) (*fileRef, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = file.Close()
	}()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("files", filepath.Base(path))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: upload status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var serverPaths []string
	if err := json.NewDecoder(resp.Body).Decode(&serverPaths); err != nil {
		return nil, fmt.Errorf("%w: decode upload response: %v", domain.ErrProtocolMismatch, err)
	}
	if len(serverPaths) == 0 {
		return nil, fmt.Errorf("%w: upload returned no paths", domain.ErrProtocolMismatch)
	}
	return &fileRef{
		Path: serverPaths[0],
		Name: filepath.Base(path),
		Meta: map[string]string{"_type": "gradio.FileData"},
	}, nil
}

func (c *Client) run(ctx context.Context, modelRef, clothRef *fileRef, apiCategory string) (*fileRef, error) {
	payload := runRequest{
		Data: []any{modelRef, clothRef, apiCategory, sampleCount, stepCount, guidanceScale, randomSeed},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode run request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run/process_dc", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: run status %d", domain.ErrUpstream, resp.StatusCode)
	}

	var out runResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode run response: %v", domain.ErrProtocolMismatch, err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: run returned no data", domain.ErrProtocolMismatch)
	}
	var records []resultRecord
	if err := json.Unmarshal(out.Data[0], &records); err != nil {
		return nil, fmt.Errorf("%w: decode result records: %v", domain.ErrProtocolMismatch, err)
	}
	if len(records) == 0 || records[0].Image == nil {
		return nil, fmt.Errorf("%w: no composite in run response", domain.ErrProtocolMismatch)
	}
	return records[0].Image, nil
}

func (c *Client) download(ctx context.Context, ref *fileRef) (string, error) {
	src := ref.URL
	if src == "" {
		src = c.baseURL + "/file=" + url.PathEscape(ref.Path)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: download status %d", domain.ErrUpstream, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "tryon_result_*.png")
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
