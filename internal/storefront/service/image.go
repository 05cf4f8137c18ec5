package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

var (
	ErrImagesDisabled = errors.New("image uploads are not configured")
	ErrImageType      = &ValidationError{Message: "only jpeg, png, gif and webp images can be uploaded"}
)

const DefaultUploadTTL = 15 * time.Minute

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Presigner is the part of *s3.PresignClient used for uploads.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// ImageUpload tells the client where to PUT the file and which URLs to
// store on the item afterwards.
type ImageUpload struct {
	URL        string
	Method     string
	Headers    http.Header
	Key        string
	Image      string
	LargeImage string
	ExpiresAt  time.Time
}

// ImageService hands out presigned S3 uploads for item images.
type ImageService struct {
	Store     store.Store
	Presigner Presigner // nil disables uploads
	Bucket    string
	Region    string

	// PublicURL is the base URL objects are served from. Defaults to the
	// virtual-hosted bucket URL.
	PublicURL string

	TTL time.Duration
}

func (s *ImageService) Enabled() bool {
	return s.Presigner != nil && s.Bucket != ""
}

// PresignUpload issues a PUT URL for a new image owned by the caller.
func (s *ImageService) PresignUpload(ctx context.Context, callerID, filename, contentType string) (ImageUpload, error) {
	log := slogx.FromContext(ctx)

	if !s.Enabled() {
		return ImageUpload{}, ErrImagesDisabled
	}
	if _, err := loadCaller(ctx, s.Store.Users(), callerID); err != nil {
		return ImageUpload{}, err
	}

	contentType = strings.ToLower(strings.TrimSpace(contentType))
	ext, ok := imageExtensions[contentType]
	if !ok {
		return ImageUpload{}, ErrImageType
	}
	if e := strings.ToLower(path.Ext(filename)); ext == ".jpg" && e == ".jpeg" {
		ext = e
	}

	ttl := s.TTL
	if ttl <= 0 {
		ttl = DefaultUploadTTL
	}
	now := time.Now().UTC()
	key := fmt.Sprintf("items/%d/%02d/%s%s", now.Year(), now.Month(), idx.NewAt(now), ext)

	req, err := s.Presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.Bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		log.Error("failed to presign upload", slog.String("key", key), slog.Any("error", err))
		return ImageUpload{}, err
	}

	public := s.objectURL(key)
	log.Info("image upload presigned", slog.String("user_id", callerID), slog.String("key", key))
	return ImageUpload{
		URL:        req.URL,
		Method:     req.Method,
		Headers:    req.SignedHeader,
		Key:        key,
		Image:      public,
		LargeImage: public,
		ExpiresAt:  now.Add(ttl),
	}, nil
}

func (s *ImageService) objectURL(key string) string {
	if s.PublicURL != "" {
		return strings.TrimSuffix(s.PublicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.Bucket, s.Region, key)
}
