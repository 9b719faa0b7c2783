package services

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
)

// ErrEmptyUploadResponse is returned when the server accepted an upload but
// did not say where it stored it.
var ErrEmptyUploadResponse = errors.New("upload response has no url")

// UploadService sends files to the back-office upload endpoint.
type UploadService interface {
	UploadImage(ctx context.Context, path string) (string, error)
}

type uploadService struct {
	client client.Client
}

func NewUploadService(c client.Client) UploadService {
	return &uploadService{client: c}
}

type uploadResponse struct {
	URL      string `json:"url"`
	ImageURL string `json:"imageUrl"`
}

// UploadImage posts the file at path as the "image" field and returns the
// URL the server stored it under.
func (s *uploadService) UploadImage(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	body, err := client.NewMultipartBody(nil, client.FilePart{
		Field:       "image",
		FileName:    name,
		ContentType: mime.TypeByExtension(filepath.Ext(name)),
		Content:     f,
	})
	if err != nil {
		return "", err
	}

	resp, err := client.Fetch[uploadResponse](ctx, s.client, "/admin/upload", client.Request{
		Method:      http.MethodPost,
		Body:        body,
		RequireAuth: true,
	})
	if err != nil {
		return "", err
	}

	switch {
	case resp.URL != "":
		return resp.URL, nil
	case resp.ImageURL != "":
		return resp.ImageURL, nil
	default:
		return "", ErrEmptyUploadResponse
	}
}
