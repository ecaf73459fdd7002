package history

import (
	"context"
	"errors"

	"github.com/lipish/postloop/internal/entity"
	"gorm.io/gorm"
)

// Store persists deployment records.
type Store interface {
	Create(ctx context.Context, dep *entity.Deployment) (*entity.Deployment, error)
	GetByID(ctx context.Context, id entity.ID) (*entity.Deployment, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Deployment, error)
	Update(ctx context.Context, dep *entity.Deployment) (*entity.Deployment, error)
	// MarkActive flags the given record as the live deployment and clears
	// the flag everywhere else.
	MarkActive(ctx context.Context, id entity.ID) error
}

type storeImpl struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &storeImpl{db: db}
}

func (s *storeImpl) Create(ctx context.Context, dep *entity.Deployment) (*entity.Deployment, error) {
	var model Deployment
	model.FromEntity(dep)
	if err := gorm.G[Deployment](s.db).Create(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToEntity(), nil
}

func (s *storeImpl) GetByID(ctx context.Context, id entity.ID) (*entity.Deployment, error) {
	found, err := gorm.G[Deployment](s.db).Where("id = ?", id.Uint()).First(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entity.ErrNotFound
		}
		return nil, err
	}
	return found.ToEntity(), nil
}

// ListRecent returns up to limit records, newest first. limit <= 0 means all.
func (s *storeImpl) ListRecent(ctx context.Context, limit int) ([]*entity.Deployment, error) {
	q := s.db.WithContext(ctx).Model(&Deployment{}).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var founds []Deployment
	if err := q.Find(&founds).Error; err != nil {
		return nil, err
	}
	res := make([]*entity.Deployment, len(founds))
	for i := range founds {
		res[i] = founds[i].ToEntity()
	}
	return res, nil
}

func (s *storeImpl) Update(ctx context.Context, dep *entity.Deployment) (*entity.Deployment, error) {
	var model Deployment
	model.FromEntity(dep)
	err := s.db.WithContext(ctx).Model(&Deployment{}).Where("id = ?", dep.ID.Uint()).
		Select("status", "stage", "message", "is_active").
		Updates(&model).Error
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, dep.ID)
}

func (s *storeImpl) MarkActive(ctx context.Context, id entity.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Deployment{}).Where("is_active = ?", true).
			Update("is_active", false).Error; err != nil {
			return err
		}
		return tx.Model(&Deployment{}).Where("id = ?", id.Uint()).
			Update("is_active", true).Error
	})
}
