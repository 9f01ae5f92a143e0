package ports

import "tscat/internal/domain"

type Exporter interface {
	Format() string
	Export(cat *domain.Catalog) ([]byte, error)
}
