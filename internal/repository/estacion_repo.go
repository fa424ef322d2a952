package repository

import (
	"context"

	"colectas/internal/model"

	"gorm.io/gorm"
)

type EstacionRepository interface {
	// CreateWithSupervisor writes the station row and its supervisor in one
	// transaction. A station without any user would block setup forever, so
	// the two rows land together or not at all.
	CreateWithSupervisor(ctx context.Context, e *model.Estacion, sup *model.Usuario) error
	// Get returns the single station row, gorm.ErrRecordNotFound before setup.
	Get(ctx context.Context) (*model.Estacion, error)
}

type estacionRepo struct{ db *gorm.DB }

func NewEstacionRepository(db *gorm.DB) EstacionRepository { return &estacionRepo{db: db} }

func (r *estacionRepo) CreateWithSupervisor(ctx context.Context, e *model.Estacion, sup *model.Usuario) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		return tx.Create(sup).Error
	})
}

func (r *estacionRepo) Get(ctx context.Context) (*model.Estacion, error) {
	var e model.Estacion
	err := r.db.WithContext(ctx).First(&e).Error
	return &e, err
}
