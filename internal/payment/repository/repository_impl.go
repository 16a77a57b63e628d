package repository

import (
	"context"
	"errors"

	"github.com/smallbiznis/payhook/internal/payment/domain"
	"github.com/smallbiznis/payhook/pkg/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertIfAbsent(ctx context.Context, conn *gorm.DB, event *domain.PaymentEvent) (bool, error) {
	res := conn.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}},
			DoNothing: true,
		}).
		Create(event)
	if res.Error != nil {
		// Dialects without ON CONFLICT support still surface the unique violation.
		if db.IsDuplicateKeyErr(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindByEventID(ctx context.Context, conn *gorm.DB, eventID string) (*domain.PaymentEvent, error) {
	var item domain.PaymentEvent
	err := conn.WithContext(ctx).
		Where("event_id = ?", eventID).
		Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) Count(ctx context.Context, conn *gorm.DB) (int64, error) {
	var n int64
	err := conn.WithContext(ctx).Model(&domain.PaymentEvent{}).Count(&n).Error
	return n, err
}
