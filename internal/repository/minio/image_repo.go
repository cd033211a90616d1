package minio

import (
	"context"
	"net/url"

	"github.com/DRSN-tech/storefront-assistant/internal/cfg"
	"github.com/DRSN-tech/storefront-assistant/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ImageRepo выдаёт подписанные ссылки на изображения товаров в MinIO.
type ImageRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewImageRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ImageRepo {
	return &ImageRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// PresignGet возвращает временную ссылку на объект. Сеть не используется, если задан регион.
func (i *ImageRepo) PresignGet(ctx context.Context, key string) (string, error) {
	u, err := i.mc.PresignedGetObject(ctx, i.cfg.BucketName, key, i.cfg.URLExpiry, url.Values{})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return u.String(), nil
}
