package repository

import (
	"context"
	"errors"

	"colectas/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FolioRepository interface {
	// Incrementar atomically bumps the (estacion, mes) counter and returns
	// the post-increment value. The row is locked for the duration of the
	// transaction so two callers can never observe the same value.
	Incrementar(ctx context.Context, estacion, mes string) (int64, error)
	// Reiniciar sets the counter to zero and appends the audit entry in the
	// same transaction. Prior bitácora rows are never touched.
	Reiniciar(ctx context.Context, estacion, mes, por string) error
	ListBitacora(ctx context.Context, estacion string) ([]model.BitacoraEntrada, error)
}

type folioRepo struct{ db *gorm.DB }

func NewFolioRepository(db *gorm.DB) FolioRepository { return &folioRepo{db: db} }

func (r *folioRepo) Incrementar(ctx context.Context, estacion, mes string) (int64, error) {
	var valor int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c model.FolioContador
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("estacion = ? AND mes = ?", estacion, mes).
			First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c = model.FolioContador{Estacion: estacion, Mes: mes, Valor: 0}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		c.Valor++
		valor = c.Valor
		return tx.Save(&c).Error
	})
	return valor, err
}

func (r *folioRepo) Reiniciar(ctx context.Context, estacion, mes, por string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("estacion = ? AND mes = ?", estacion, mes).
			First(&model.FolioContador{}).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&model.FolioContador{Estacion: estacion, Mes: mes, Valor: 0}).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			if err := tx.Model(&model.FolioContador{}).
				Where("estacion = ? AND mes = ?", estacion, mes).
				Update("valor", 0).Error; err != nil {
				return err
			}
		}
		return tx.Create(&model.BitacoraEntrada{
			Estacion: estacion,
			Mes:      mes,
			Accion:   "reset_folio",
			Por:      por,
		}).Error
	})
}

func (r *folioRepo) ListBitacora(ctx context.Context, estacion string) ([]model.BitacoraEntrada, error) {
	var entradas []model.BitacoraEntrada
	err := r.db.WithContext(ctx).
		Where("estacion = ?", estacion).
		Order("created_at ASC, id ASC").
		Find(&entradas).Error
	return entradas, err
}
