package postgres

import (
	"context"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LockRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewLockRepository(db *gorm.DB, logger *slog.Logger) *LockRepository {
	return &LockRepository{db: db, logger: logger}
}

// Acquire is a single upsert: insert the row, or take over an expired one.
// The conditional DO UPDATE leaves RowsAffected at zero when the current
// holder's lease is still live, which is the lost-the-race signal.
func (r *LockRepository) Acquire(ctx context.Context, job string, holder string, ttl time.Duration, now time.Time) (bool, error) {
	model := lockModel{
		Job:       job,
		Holder:    holder,
		ExpiresAt: now.Add(ttl),
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "job"}},
			DoUpdates: clause.Assignments(map[string]any{
				"holder":     holder,
				"expires_at": now.Add(ttl),
			}),
			Where: clause.Where{
				Exprs: []clause.Expression{
					clause.Lte{Column: clause.Column{Table: "cron_locks", Name: "expires_at"}, Value: now},
				},
			},
		}).
		Create(&model)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *LockRepository) Release(ctx context.Context, job string, holder string) error {
	return r.db.WithContext(ctx).
		Where("job = ? AND holder = ?", job, holder).
		Delete(&lockModel{}).Error
}

type lockModel struct {
	Job       string `gorm:"primaryKey;column:job"`
	Holder    string `gorm:"column:holder"`
	ExpiresAt time.Time
}

func (lockModel) TableName() string {
	return "cron_locks"
}
