package ports

import "tscat/internal/domain"

type Parser interface {
	Format() string
	Parse(data []byte) (*domain.Catalog, error)
}
