package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/videotube/internal/models"
)

func (r *GormRepo) CreateComment(ctx context.Context, c *models.Comment) error {
	return translate(r.DB.WithContext(ctx).Create(c).Error)
}

func (r *GormRepo) ListComments(ctx context.Context, model models.ParentModel, parentID uuid.UUID, offset, limit int) (int64, []models.Comment, error) {
	q := r.DB.WithContext(ctx).Model(&models.Comment{}).
		Where("parent_model = ? AND parent_id = ?", model, parentID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Comment, 0, limit)
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// ToggleLike flips the like of userID on the target and reports whether
// the target is liked afterwards.
func (r *GormRepo) ToggleLike(ctx context.Context, userID uuid.UUID, model models.ParentModel, likedID uuid.UUID) (bool, error) {
	liked := false
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("liked_by_id = ? AND liked_model = ? AND liked_id = ?", userID, model, likedID).
			First(&existing).Error
		switch {
		case err == nil:
			return tx.Delete(&existing).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			liked = true
			return tx.Create(&models.Like{LikedByID: userID, LikedModel: model, LikedID: likedID}).Error
		default:
			return err
		}
	})
	if err != nil {
		err = translate(err)
		// a concurrent toggle inserted the same like first
		if liked && errors.Is(err, ErrDuplicate) {
			return true, nil
		}
		return false, err
	}
	return liked, nil
}

func (r *GormRepo) CountLikes(ctx context.Context, model models.ParentModel, likedID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.Like{}).
		Where("liked_model = ? AND liked_id = ?", model, likedID).
		Count(&n).Error
	return n, err
}
