package minio

import (
	"context"
	"strings"

	"github.com/DRSN-tech/storefront-assistant/internal/usecase"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
)

// Presigner подписывает ключ объекта в хранилище.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// ImageResolver превращает ключи объектов MinIO в подписанные URL.
// Абсолютные ссылки и пути от корня сайта возвращаются без изменений.
type ImageResolver struct {
	presigner Presigner
}

// NewImageResolver: nil presigner отключает подпись, все ссылки проходят как есть.
func NewImageResolver(presigner Presigner) *ImageResolver {
	return &ImageResolver{presigner: presigner}
}

func (r *ImageResolver) ResolveImageURL(ctx context.Context, ref string) (string, error) {
	const op = "ImageResolver.ResolveImageURL"

	ref = strings.TrimSpace(ref)
	if r.presigner == nil || ref == "" || isPublic(ref) {
		return ref, nil
	}

	u, err := r.presigner.PresignGet(ctx, strings.TrimPrefix(ref, "s3://"))
	if err != nil {
		return "", e.Wrap(op, err)
	}
	return u, nil
}

func isPublic(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "/")
}

var _ usecase.ImageResolver = (*ImageResolver)(nil)
