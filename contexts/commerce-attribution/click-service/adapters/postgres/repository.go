package postgresadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"magnolia/contexts/commerce-attribution/click-service/domain/entities"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Append(ctx context.Context, click entities.LinkClick) error {
	row := clickModel{
		ClickID:   strings.TrimSpace(click.ClickID),
		MatchID:   strings.TrimSpace(click.MatchID),
		Code:      strings.TrimSpace(click.Code),
		IPHash:    click.IPHash,
		UserAgent: click.UserAgent,
		Referer:   click.Referer,
		CreatedAt: click.CreatedAt.UTC(),
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

type clickModel struct {
	ClickID   string    `gorm:"column:click_id;primaryKey"`
	MatchID   string    `gorm:"column:match_id;index"`
	Code      string    `gorm:"column:code"`
	IPHash    string    `gorm:"column:ip_hash"`
	UserAgent string    `gorm:"column:user_agent"`
	Referer   string    `gorm:"column:referer"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (clickModel) TableName() string {
	return "link_clicks"
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
