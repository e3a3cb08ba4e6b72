package cloudinary

import (
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/cloudinary/cloudinary-go/v2/config"
)

// Client uploads project covers and valuation photos.
type Client interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (UploadResult, error)
	DeleteByURL(ctx context.Context, url string) error
}

type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	PublicID     string `json:"public_id"`
}

const (
	ImageWidth = 1200
	ThumbWidth = 320
)

const imageEager = "q_auto,f_auto,w_1200,c_limit"

var eagerAsyncFalse = false

// BuildOptimizedImageURL returns a delivery URL with auto quality and format for an existing public ID.
func BuildOptimizedImageURL(cloudName, publicID string, width int) string {
	if width <= 0 {
		width = ImageWidth
	}
	return fmt.Sprintf("https://res.cloudinary.com/%s/image/upload/q_auto,f_auto,w_%d,c_fill/%s",
		cloudName, width, publicID)
}

var (
	transformSegment = regexp.MustCompile(`^[a-z]{1,2}_[^/]*$`)
	versionSegment   = regexp.MustCompile(`^v[0-9]+$`)
)

// PublicIDFromURL extracts "folder/name" from a res.cloudinary.com delivery URL.
// It returns "" when the URL does not look like an upload URL.
func PublicIDFromURL(url string) string {
	const marker = "/upload/"
	i := strings.Index(url, marker)
	if i < 0 {
		return ""
	}
	parts := strings.Split(url[i+len(marker):], "/")
	for len(parts) > 1 && (transformSegment.MatchString(parts[0]) || versionSegment.MatchString(parts[0])) {
		parts = parts[1:]
	}
	id := strings.Join(parts, "/")
	return strings.TrimSuffix(id, path.Ext(id))
}

type clientImpl struct {
	cloudName string
	uploader  *uploader.API
}

func (c *clientImpl) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (UploadResult, error) {
	result, err := c.uploader.Upload(ctx, file, uploader.UploadParams{
		Folder:     folder,
		PublicID:   publicID,
		Eager:      imageEager,
		EagerAsync: &eagerAsyncFalse,
	})
	if err != nil {
		return UploadResult{}, err
	}
	if result.Error.Message != "" {
		return UploadResult{}, fmt.Errorf("cloudinary: %s", result.Error.Message)
	}
	out := UploadResult{URL: result.SecureURL, PublicID: result.PublicID}
	if len(result.Eager) > 0 {
		out.ThumbnailURL = result.Eager[0].SecureURL
	}
	if out.ThumbnailURL == "" {
		out.ThumbnailURL = BuildOptimizedImageURL(c.cloudName, result.PublicID, ThumbWidth)
	}
	return out, nil
}

func (c *clientImpl) DeleteByURL(ctx context.Context, url string) error {
	id := PublicIDFromURL(url)
	if id == "" {
		return nil
	}
	_, err := c.uploader.Destroy(ctx, uploader.DestroyParams{PublicID: id})
	return err
}

// NewClientFromParams builds a Client from Cloudinary cloud name, API key, and secret.
func NewClientFromParams(cloudName, apiKey, apiSecret string) (Client, error) {
	cfg, err := config.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, err
	}
	up, err := uploader.NewWithConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	return &clientImpl{
		cloudName: cloudName,
		uploader:  up,
	}, nil
}
