package repository

import (
	"errors"

	"bithra/internal/domain"
	"bithra/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPackageMismatch = errors.New("package does not belong to project")

type ProjectFilter struct {
	Category  string
	City      string
	Status    string
	Search    string
	CreatorID uint
}

// BackingCheck runs inside the backing transaction against the locked rows.
// pkg is nil when the backer pledged without choosing a package.
type BackingCheck func(p *models.Project, pkg *models.ProjectPackage) error

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create inserts the project and its packages.
func (r *ProjectRepository) Create(p *models.Project) error {
	return r.db.Create(p).Error
}

func (r *ProjectRepository) GetByID(id uint) (*models.Project, error) {
	var p models.Project
	err := r.db.Preload("Packages", func(db *gorm.DB) *gorm.DB {
		return db.Order("min_halalas ASC")
	}).First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) GetByPublicID(publicID string) (*models.Project, error) {
	var p models.Project
	err := r.db.Preload("Packages", func(db *gorm.DB) *gorm.DB {
		return db.Order("min_halalas ASC")
	}).Where("public_id = ?", publicID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepository) List(f ProjectFilter, page, limit int) ([]models.Project, int64, error) {
	q := r.db.Model(&models.Project{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.City != "" {
		q = q.Where("city = ?", f.City)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CreatorID != 0 {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.Search != "" {
		q = q.Where("title LIKE ? OR description LIKE ?", "%"+f.Search+"%", "%"+f.Search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []models.Project
	err := q.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&list).Error
	return list, total, err
}

func (r *ProjectRepository) UpdateStatus(id uint, status string) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Update("status", status).Error
}

func (r *ProjectRepository) UpdateCover(id uint, url string) error {
	return r.db.Model(&models.Project{}).Where("id = ?", id).Update("cover_url", url).Error
}

// Back records a pledge. Project and package rows are locked so the counters and
// the package limit stay consistent under concurrent backers.
func (r *ProjectRepository) Back(b *models.Backing, check BackingCheck) (*models.Project, error) {
	var updated models.Project
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p models.Project
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, b.ProjectID).Error; err != nil {
			return err
		}
		var pkg *models.ProjectPackage
		if b.PackageID != nil {
			var pp models.ProjectPackage
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pp, *b.PackageID).Error; err != nil {
				return err
			}
			if pp.ProjectID != p.ID {
				return ErrPackageMismatch
			}
			pkg = &pp
		}
		if err := check(&p, pkg); err != nil {
			return err
		}

		var prior int64
		if err := tx.Model(&models.Backing{}).
			Where("project_id = ? AND backer_id = ?", p.ID, b.BackerID).
			Count(&prior).Error; err != nil {
			return err
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"current_halalas": gorm.Expr("current_halalas + ?", b.AmountHalalas),
		}
		if prior == 0 {
			updates["backers_count"] = gorm.Expr("backers_count + 1")
		}
		if p.Status == domain.ProjectStatusActive && p.CurrentHalalas+b.AmountHalalas >= p.GoalHalalas {
			updates["status"] = domain.ProjectStatusFunded
		}
		if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).Updates(updates).Error; err != nil {
			return err
		}
		if pkg != nil {
			if err := tx.Model(&models.ProjectPackage{}).Where("id = ?", pkg.ID).
				UpdateColumn("claimed_count", gorm.Expr("claimed_count + 1")).Error; err != nil {
				return err
			}
		}
		return tx.First(&updated, p.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *ProjectRepository) ListBackingsByBacker(backerID uint, limit, offset int) ([]models.Backing, error) {
	var list []models.Backing
	err := r.db.Where("backer_id = ?", backerID).
		Preload("Project").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&list).Error
	return list, err
}

// BackingTotals returns how many pledges the user made and their sum.
func (r *ProjectRepository) BackingTotals(backerID uint) (count int64, sum int64, err error) {
	var out struct {
		Count int64
		Sum   int64
	}
	err = r.db.Model(&models.Backing{}).
		Select("COUNT(*) AS count, COALESCE(SUM(amount_halalas), 0) AS sum").
		Where("backer_id = ?", backerID).
		Scan(&out).Error
	return out.Count, out.Sum, err
}

func (r *ProjectRepository) CountByCreator(creatorID uint) (int64, error) {
	var c int64
	err := r.db.Model(&models.Project{}).Where("creator_id = ?", creatorID).Count(&c).Error
	return c, err
}

// TopBackers ranks users by total pledged halalas.
func (r *ProjectRepository) TopBackers(limit int) ([]ScoreRow, error) {
	var rows []ScoreRow
	err := r.db.Model(&models.Backing{}).
		Select("backer_id AS user_id, SUM(amount_halalas) AS score").
		Group("backer_id").
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
