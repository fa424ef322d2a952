package repository

import (
	"context"

	"colectas/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DepositoRepository interface {
	Create(ctx context.Context, d *model.Deposito) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deposito, error)
	Update(ctx context.Context, d *model.Deposito) error
	// ListByDia returns the station's deposits for one calendar day,
	// ordered by creation time ascending (display order).
	ListByDia(ctx context.Context, estacion, fecha string, incluirCancelados bool) ([]model.Deposito, error)
	// DeleteDia physically removes the day's rows — the only true deletion
	// path in the system; returns the number of rows removed.
	DeleteDia(ctx context.Context, estacion, fecha string) (int64, error)
}

type depositoRepo struct{ db *gorm.DB }

func NewDepositoRepository(db *gorm.DB) DepositoRepository { return &depositoRepo{db: db} }

func (r *depositoRepo) Create(ctx context.Context, d *model.Deposito) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *depositoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Deposito, error) {
	var d model.Deposito
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *depositoRepo) Update(ctx context.Context, d *model.Deposito) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *depositoRepo) ListByDia(ctx context.Context, estacion, fecha string, incluirCancelados bool) ([]model.Deposito, error) {
	q := r.db.WithContext(ctx).Where("estacion = ? AND fecha = ?", estacion, fecha)
	if !incluirCancelados {
		q = q.Where("estado <> ?", model.EstadoCancelado)
	}
	var deps []model.Deposito
	// Secondary key keeps the order stable when timestamps collide
	err := q.Order("created_at ASC, id ASC").Find(&deps).Error
	return deps, err
}

func (r *depositoRepo) DeleteDia(ctx context.Context, estacion, fecha string) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("estacion = ? AND fecha = ?", estacion, fecha).
		Delete(&model.Deposito{})
	return res.RowsAffected, res.Error
}
