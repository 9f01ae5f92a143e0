package app

import (
	"context"

	"tscat/internal/domain"
	"tscat/internal/ports"
)

type FileAPI struct{ repo ports.FileRepository }

func NewFileAPI(repo ports.FileRepository) *FileAPI { return &FileAPI{repo: repo} }

func (a *FileAPI) List(ctx context.Context) ([]*domain.File, error) { return a.repo.List(ctx) }

func (a *FileAPI) Get(ctx context.Context, id int64) (*domain.File, error) { return a.repo.Get(ctx, id) }

func (a *FileAPI) Delete(ctx context.Context, id int64) error { return a.repo.Delete(ctx, id) }
