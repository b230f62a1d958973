package ports

import (
	"context"

	"rewardcore/internal/domain/container"
)

type CatalogProvider interface {
	Index(ctx context.Context) ([]string, error)
	Load(ctx context.Context, name string) (container.Catalog, error)
}
