package admin

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ramon98292347/ravic-joias-sub000/internal/models"
	"github.com/Ramon98292347/ravic-joias-sub000/internal/validate"
)

var settingKey = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]{0,127}$`)

func checkKey(key string) error {
	if !settingKey.MatchString(key) {
		return &validate.ValidationError{Field: "key", Message: "Chave inválida"}
	}
	return nil
}

func (s *Service) ListSettings(ctx context.Context) ([]models.Setting, error) {
	items := []models.Setting{}
	err := s.db.WithContext(ctx).Order("key asc").Find(&items).Error
	return items, err
}

func (s *Service) GetSetting(ctx context.Context, key string) (*models.Setting, error) {
	var st models.Setting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSettingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// SetSetting creates or replaces a setting.
func (s *Service) SetSetting(ctx context.Context, actor Actor, key, value string, public bool) (*models.Setting, error) {
	key = strings.TrimSpace(key)
	if err := checkKey(key); err != nil {
		return nil, err
	}
	st := &models.Setting{Key: key, Value: value, Public: public, UpdatedAt: time.Now()}
	err := s.mutate(ctx, actor, ActionUpdate, "setting", func(tx *gorm.DB) (any, any, error) {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "public", "updated_at"}),
		}).Create(st).Error
		return key, map[string]any{"value": value, "public": public}, err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Service) DeleteSetting(ctx context.Context, actor Actor, key string) error {
	return s.mutate(ctx, actor, ActionDelete, "setting", func(tx *gorm.DB) (any, any, error) {
		res := tx.Where("key = ?", key).Delete(&models.Setting{})
		if res.Error != nil {
			return nil, nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, nil, ErrSettingNotFound
		}
		return key, nil, nil
	})
}

// intSetting reads a numeric setting, falling back to def when it is
// missing or malformed.
func (s *Service) intSetting(ctx context.Context, key string, def int) int {
	st, err := s.GetSetting(ctx, key)
	if err != nil {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(st.Value))
	if err != nil {
		s.logger.Warn().Str("key", key).Str("value", st.Value).Msg("setting is not a number")
		return def
	}
	return n
}
