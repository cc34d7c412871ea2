// Package upload talks to the ImageKit media API. The rest of the
// application never holds ImageKit credentials; everything goes through
// this client.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const defaultUploadURL = "https://upload.imagekit.io/api/v1/files/upload"

// Result is the subset of ImageKit's upload response surfaced to callers.
type Result struct {
	URL      string `json:"url"`
	FileID   string `json:"fileId"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int64  `json:"size"`
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
}

// Client uploads files to ImageKit using the private-key REST API.
type Client struct {
	privateKey string
	uploadURL  string
	httpClient *http.Client
}

func NewClient(privateKey, uploadURL string) *Client {
	if uploadURL == "" {
		uploadURL = defaultUploadURL
	}
	return &Client{
		privateKey: privateKey,
		uploadURL:  uploadURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether a private key is present. The upload surface
// returns a clean error instead of calling out with empty credentials.
func (c *Client) Configured() bool {
	return c.privateKey != ""
}

// Upload sends the file to ImageKit and returns the stored file's metadata.
// ImageKit derives width and height server-side; this client does not decode
// the image.
func (c *Client) Upload(ctx context.Context, fileName, folder string, content []byte) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.WriteField("fileName", fileName); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if folder != "" {
		if err := writer.WriteField("folder", folder); err != nil {
			return nil, fmt.Errorf("building upload form: %w", err)
		}
	}
	if err := writer.WriteField("useUniqueFileName", "false"); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("building upload request: %w", err)
	}
	req.SetBasicAuth(c.privateKey, "")
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("uploading to imagekit: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading imagekit response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imagekit upload failed: status %d: %s", resp.StatusCode, string(raw))
	}

	var result Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding imagekit response: %w", err)
	}
	return &result, nil
}
