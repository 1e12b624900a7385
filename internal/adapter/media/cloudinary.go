package media

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
)

// CloudinaryResolver maps stored public ids to Cloudinary delivery URLs.
// Absolute URLs pass through untouched.
type CloudinaryResolver struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryResolver(cloudURL string) (*CloudinaryResolver, error) {
	cld, err := cloudinary.NewFromURL(cloudURL)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryResolver{cld: cld}, nil
}

// NewCloudinaryResolverFromParams builds a resolver without a CLOUDINARY_URL.
func NewCloudinaryResolverFromParams(cloud, key, secret string) (*CloudinaryResolver, error) {
	cld, err := cloudinary.NewFromParams(cloud, key, secret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary init: %w", err)
	}
	return &CloudinaryResolver{cld: cld}, nil
}

func (r *CloudinaryResolver) Resolve(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "/") {
		return ref
	}
	img, err := r.cld.Image(ref)
	if err != nil {
		slog.Warn("cloudinary image ref rejected", "ref", ref, "error", err)
		return ref
	}
	url, err := img.String()
	if err != nil {
		slog.Warn("cloudinary url build failed", "ref", ref, "error", err)
		return ref
	}
	return url
}
