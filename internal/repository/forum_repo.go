package repository

import (
	"time"

	"bithra/internal/models"

	"gorm.io/gorm"
)

// CategoryWithCount is a forum category plus its live post count.
type CategoryWithCount struct {
	models.ForumCategory
	PostsCount int64 `json:"posts_count"`
}

type ForumRepository struct {
	db *gorm.DB
}

func NewForumRepository(db *gorm.DB) *ForumRepository {
	return &ForumRepository{db: db}
}

func (r *ForumRepository) ListCategories() ([]CategoryWithCount, error) {
	var cats []models.ForumCategory
	if err := r.db.Order("position ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	var counts []struct {
		CategoryID uint
		Total      int64
	}
	if err := r.db.Model(&models.ForumPost{}).
		Select("category_id, COUNT(*) AS total").
		Group("category_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	byCat := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byCat[c.CategoryID] = c.Total
	}
	out := make([]CategoryWithCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, CategoryWithCount{ForumCategory: c, PostsCount: byCat[c.ID]})
	}
	return out, nil
}

func (r *ForumRepository) GetCategoryBySlug(slug string) (*models.ForumCategory, error) {
	var c models.ForumCategory
	if err := r.db.Where("slug = ?", slug).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ForumRepository) ListPosts(categoryID uint, page, limit int) ([]models.ForumPost, int64, error) {
	q := r.db.Model(&models.ForumPost{})
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.ForumPost
	err := q.Preload("Author").
		Order("last_activity_at DESC").
		Limit(limit).Offset((page - 1) * limit).
		Find(&list).Error
	return list, total, err
}

func (r *ForumRepository) GetPost(id uint) (*models.ForumPost, error) {
	var p models.ForumPost
	err := r.db.Preload("Author").
		Preload("Replies", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Replies.Author").
		First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ForumRepository) IncrementViews(id uint) error {
	return r.db.Model(&models.ForumPost{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

func (r *ForumRepository) CreatePost(p *models.ForumPost) error {
	if p.LastActivityAt.IsZero() {
		p.LastActivityAt = time.Now()
	}
	return r.db.Create(p).Error
}

// CreateReply stores the reply and bumps the post's counters.
func (r *ForumRepository) CreateReply(reply *models.ForumReply) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&models.ForumPost{}).Where("id = ?", reply.PostID).
			Updates(map[string]interface{}{
				"replies_count":    gorm.Expr("replies_count + 1"),
				"last_activity_at": time.Now(),
			}).Error
	})
}

// DeletePost soft-deletes a post owned by authorID. It reports false when nothing matched.
func (r *ForumRepository) DeletePost(id, authorID uint) (bool, error) {
	res := r.db.Where("id = ? AND author_id = ?", id, authorID).Delete(&models.ForumPost{})
	return res.RowsAffected > 0, res.Error
}
