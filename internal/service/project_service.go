package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/metrics"
	"bithra/internal/models"
	"bithra/internal/repository"
	"bithra/pkg/cloudinary"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type projectStore interface {
	Create(p *models.Project) error
	GetByID(id uint) (*models.Project, error)
	GetByPublicID(publicID string) (*models.Project, error)
	List(f repository.ProjectFilter, page, limit int) ([]models.Project, int64, error)
	UpdateStatus(id uint, status string) error
	UpdateCover(id uint, url string) error
	Back(b *models.Backing, check repository.BackingCheck) (*models.Project, error)
	ListBackingsByBacker(backerID uint, limit, offset int) ([]models.Backing, error)
}

type backingQualifier interface {
	QualifyBacking(ctx context.Context, backerID, backingID uint, amount int64)
}

type imageUploader interface {
	UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (cloudinary.UploadResult, error)
	DeleteByURL(ctx context.Context, url string) error
}

const (
	defaultCampaignDays = 30
	maxCampaignDays     = 90
)

type ProjectService struct {
	projects  projectStore
	referrals backingQualifier
	board     scoreBumper
	notifier  Notifier
	uploader  imageUploader
	folder    string
	now       func() time.Time
}

// NewProjectService accepts a nil uploader when Cloudinary is not configured.
func NewProjectService(projects projectStore, referrals backingQualifier, board scoreBumper, notifier Notifier, uploader cloudinary.Client, folder string) *ProjectService {
	s := &ProjectService{
		projects:  projects,
		referrals: referrals,
		board:     board,
		notifier:  notifier,
		folder:    folder,
		now:       time.Now,
	}
	if uploader != nil {
		s.uploader = uploader
	}
	return s
}

type PackageInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	MinHalalas  int64  `json:"min_halalas"`
	MaxBackers  int    `json:"max_backers"`
}

type CreateProjectInput struct {
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Category     string         `json:"category"`
	City         string         `json:"city"`
	GoalHalalas  int64          `json:"goal_halalas"`
	DurationDays int            `json:"duration_days"`
	Packages     []PackageInput `json:"packages"`
}

// ProjectView adds the derived funding figures to a project.
type ProjectView struct {
	*models.Project
	FundedPercent float64 `json:"funded_percent"`
	DaysLeft      int     `json:"days_left"`
}

func (s *ProjectService) view(p *models.Project) ProjectView {
	return ProjectView{Project: p, FundedPercent: p.FundedPercent(), DaysLeft: p.DaysLeft(s.now())}
}

func (s *ProjectService) Create(creatorID uint, in CreateProjectInput) (*ProjectView, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > 200 || !domain.Contains(domain.ProjectCategories, in.Category) {
		return nil, ErrInvalidInput
	}
	if in.GoalHalalas <= 0 {
		return nil, ErrInvalidAmount
	}
	days := in.DurationDays
	if days == 0 {
		days = defaultCampaignDays
	}
	if days < 1 || days > maxCampaignDays {
		return nil, ErrInvalidInput
	}
	packages := make([]models.ProjectPackage, 0, len(in.Packages))
	for _, pi := range in.Packages {
		if strings.TrimSpace(pi.Title) == "" || pi.MinHalalas <= 0 || pi.MaxBackers < 0 {
			return nil, ErrInvalidInput
		}
		packages = append(packages, models.ProjectPackage{
			Title:       strings.TrimSpace(pi.Title),
			Description: pi.Description,
			MinHalalas:  pi.MinHalalas,
			MaxBackers:  pi.MaxBackers,
		})
	}
	p := &models.Project{
		PublicID:    uuid.NewString(),
		CreatorID:   creatorID,
		Title:       title,
		Description: in.Description,
		Category:    in.Category,
		City:        strings.TrimSpace(in.City),
		GoalHalalas: in.GoalHalalas,
		Status:      domain.ProjectStatusActive,
		EndsAt:      s.now().Add(time.Duration(days) * 24 * time.Hour),
		Packages:    packages,
	}
	if err := s.projects.Create(p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	v := s.view(p)
	return &v, nil
}

// resolve accepts a numeric id or a public UUID.
func (s *ProjectService) resolve(ref string) (*models.Project, error) {
	var (
		p   *models.Project
		err error
	)
	if id, perr := strconv.ParseUint(ref, 10, 64); perr == nil {
		p, err = s.projects.GetByID(uint(id))
	} else if _, perr := uuid.Parse(ref); perr == nil {
		p, err = s.projects.GetByPublicID(ref)
	} else {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, notFound(err, ErrProjectNotFound, "get project")
	}
	return p, nil
}

func (s *ProjectService) Get(ref string) (*ProjectView, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	v := s.view(p)
	return &v, nil
}

type ProjectPage struct {
	Items []ProjectView `json:"items"`
	Total int64         `json:"total"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
}

func (s *ProjectService) List(f repository.ProjectFilter, page, limit int) (*ProjectPage, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, 12, 50)
	list, total, err := s.projects.List(f, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	items := make([]ProjectView, 0, len(list))
	for i := range list {
		items = append(items, s.view(&list[i]))
	}
	return &ProjectPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

type BackInput struct {
	PackageID     *uint `json:"package_id"`
	AmountHalalas int64 `json:"amount_halalas"`
}

type BackResult struct {
	Backing *models.Backing `json:"backing"`
	Project ProjectView     `json:"project"`
}

func checkBacking(backerID uint, amount int64, now time.Time) repository.BackingCheck {
	return func(p *models.Project, pkg *models.ProjectPackage) error {
		if !p.AcceptsBackings(now) {
			return ErrProjectClosed
		}
		if p.CreatorID == backerID {
			return ErrOwnProject
		}
		if pkg != nil {
			if amount < pkg.MinHalalas {
				return ErrInvalidAmount
			}
			if pkg.SoldOut() {
				return ErrPackageSoldOut
			}
		}
		return nil
	}
}

// Back records a pledge inside one transaction, then qualifies referrals,
// bumps the backers board and tells the creator.
func (s *ProjectService) Back(ctx context.Context, backerID uint, ref string, in BackInput) (*BackResult, error) {
	if in.AmountHalalas <= 0 {
		return nil, ErrInvalidAmount
	}
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if in.PackageID != nil {
		found := false
		for _, pkg := range p.Packages {
			if pkg.ID == *in.PackageID {
				found = true
				break
			}
		}
		if !found {
			return nil, ErrPackageNotFound
		}
	}
	// fail fast before taking row locks
	if err := checkBacking(backerID, in.AmountHalalas, s.now())(p, nil); err != nil {
		return nil, err
	}

	b := &models.Backing{
		ProjectID:     p.ID,
		PackageID:     in.PackageID,
		BackerID:      backerID,
		AmountHalalas: in.AmountHalalas,
	}
	updated, err := s.projects.Back(b, checkBacking(backerID, in.AmountHalalas, s.now()))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrPackageMismatch):
			return nil, ErrPackageNotFound
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrProjectNotFound
		case errors.Is(err, ErrProjectClosed), errors.Is(err, ErrOwnProject),
			errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrPackageSoldOut):
			return nil, err
		}
		return nil, fmt.Errorf("back project: %w", err)
	}
	metrics.Backings.WithLabelValues(updated.Category).Inc()
	logger.Component("project").WithFields(logrus.Fields{
		"project_id": updated.ID, "backer_id": backerID, "amount": in.AmountHalalas, "status": updated.Status,
	}).Info("project backed")

	s.referrals.QualifyBacking(ctx, backerID, b.ID, b.AmountHalalas)
	s.board.Bump(ctx, domain.LeaderboardBackers, backerID, b.AmountHalalas)
	if err := s.notifier.Notify(updated.CreatorID, domain.NotifProjectBacked, "دعم جديد",
		"حصل مشروع "+updated.Title+" على دعم بقيمة "+FormatSAR(b.AmountHalalas),
		map[string]interface{}{"project_id": updated.ID, "amount_halalas": b.AmountHalalas}); err != nil {
		logger.Component("project").WithError(err).Warn("notify creator failed")
	}

	updated.Packages = p.Packages
	return &BackResult{Backing: b, Project: s.view(updated)}, nil
}

func (s *ProjectService) Close(creatorID uint, ref string) (*ProjectView, error) {
	p, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	if p.CreatorID != creatorID {
		return nil, ErrNotCreator
	}
	if p.Status != domain.ProjectStatusClosed {
		if err := s.projects.UpdateStatus(p.ID, domain.ProjectStatusClosed); err != nil {
			return nil, fmt.Errorf("close project: %w", err)
		}
		p.Status = domain.ProjectStatusClosed
	}
	v := s.view(p)
	return &v, nil
}

func (s *ProjectService) UploadCover(ctx context.Context, creatorID uint, ref string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrUploadsDisabled
	}
	p, err := s.resolve(ref)
	if err != nil {
		return "", err
	}
	if p.CreatorID != creatorID {
		return "", ErrNotCreator
	}
	publicID := "cover_" + p.PublicID + "_" + uuid.NewString()[:8]
	res, err := s.uploader.UploadImage(ctx, file, s.folder+"/projects", publicID)
	if err != nil {
		return "", fmt.Errorf("upload cover: %w", err)
	}
	if err := s.projects.UpdateCover(p.ID, res.URL); err != nil {
		return "", fmt.Errorf("save cover: %w", err)
	}
	if p.CoverURL != "" && p.CoverURL != res.URL {
		if err := s.uploader.DeleteByURL(ctx, p.CoverURL); err != nil {
			logger.Component("project").WithError(err).WithField("project_id", p.ID).Warn("delete previous cover failed")
		}
	}
	return res.URL, nil
}

func (s *ProjectService) ListMine(creatorID uint, page, limit int) (*ProjectPage, error) {
	return s.List(repository.ProjectFilter{CreatorID: creatorID}, page, limit)
}

func (s *ProjectService) ListBackings(backerID uint, limit, offset int) ([]models.Backing, error) {
	list, err := s.projects.ListBackingsByBacker(backerID, clampLimit(limit, 20, 100), offset)
	if err != nil {
		return nil, fmt.Errorf("list backings: %w", err)
	}
	if list == nil {
		list = []models.Backing{}
	}
	return list, nil
}
