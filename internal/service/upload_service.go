package service

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/upload"
)

const uploadMaxSizeBytes = 10 * 1024 * 1024

// unsafeFilenameChars matches everything that does not survive into the
// stored file name.
var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._]`)

var allowedUploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type UploadService struct {
	client *upload.Client
	folder string
}

type UploadInput struct {
	UserID   uint
	Filename string
	Content  []byte
}

// UploadResult is returned to the editor after a successful upload. The
// editor stores only URL on the post's featured image field.
type UploadResult struct {
	URL    string `json:"url"`
	FileID string `json:"file_id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Size   int64  `json:"size"`
	Name   string `json:"name"`
}

func NewUploadService(client *upload.Client, folder string) *UploadService {
	return &UploadService{client: client, folder: folder}
}

// Upload validates the file, scopes its name to the uploading user, and
// proxies it to the media store. The private key never leaves the server;
// browsers only ever see the resulting public URL.
func (s *UploadService) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.UserID == 0 {
		return nil, models.NewUnauthenticatedError("Sign in to upload images")
	}
	if !s.client.Configured() {
		return nil, models.NewInvalidOperationError("Image uploads are not configured")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if len(in.Content) > uploadMaxSizeBytes {
		return nil, models.NewValidationError("File too large (max 10MB)")
	}
	if !allowedUploadTypes[http.DetectContentType(in.Content)] {
		return nil, models.NewValidationError("Invalid image type")
	}

	fileName := SanitizeFilename(in.UserID, in.Filename)
	result, err := s.client.Upload(ctx, fileName, s.folder, in.Content)
	if err != nil {
		observability.ImageUploads.WithLabelValues("error").Inc()
		return nil, models.NewInternalError(err)
	}

	observability.ImageUploads.WithLabelValues("ok").Inc()
	return &UploadResult{
		URL:    result.URL,
		FileID: result.FileID,
		Width:  result.Width,
		Height: result.Height,
		Size:   result.Size,
		Name:   result.Name,
	}, nil
}

// SanitizeFilename strips unsafe characters from the client-supplied name
// and prefixes it with the uploader and a timestamp so names never collide
// across users.
func SanitizeFilename(userID uint, name string) string {
	if name == "" {
		name = "upload"
	}
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	return fmt.Sprintf("%d/%d_%s", userID, time.Now().UnixMilli(), safe)
}
