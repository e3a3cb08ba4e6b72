package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/models"
	"bithra/internal/repository"
	"bithra/pkg/cloudinary"
)

type valuationStore interface {
	Create(v *models.Valuation) error
	GetByID(id uint) (*models.Valuation, error)
	Update(v *models.Valuation) error
	ListByUser(userID uint, limit, offset int) ([]models.Valuation, error)
	ListByStatus(status string, limit, offset int) ([]models.Valuation, error)
	DistrictAverages(city string) ([]repository.DistrictPrice, error)
}

type auditWriter interface {
	Create(log *models.AuditLog) error
}

const maxValuationPhotos = 10

type ValuationService struct {
	valuations valuationStore
	audit      auditWriter
	notifier   Notifier
	uploader   imageUploader
	folder     string
	now        func() time.Time
}

// NewValuationService accepts a nil uploader when Cloudinary is not configured.
func NewValuationService(valuations valuationStore, audit auditWriter, notifier Notifier, uploader cloudinary.Client, folder string) *ValuationService {
	s := &ValuationService{valuations: valuations, audit: audit, notifier: notifier, folder: folder, now: time.Now}
	if uploader != nil {
		s.uploader = uploader
	}
	return s
}

type SubmitValuationInput struct {
	PropertyType string  `json:"property_type"`
	City         string  `json:"city"`
	District     string  `json:"district"`
	AreaSqm      float64 `json:"area_sqm"`
	Bedrooms     int     `json:"bedrooms"`
	Bathrooms    int     `json:"bathrooms"`
	AgeYears     int     `json:"age_years"`
	Purpose      string  `json:"purpose"`
	Notes        string  `json:"notes"`
}

type ValuationView struct {
	*models.Valuation
	PhotoURLs []string `json:"photo_urls"`
}

func viewValuation(v *models.Valuation) ValuationView {
	return ValuationView{Valuation: v, PhotoURLs: v.PhotoURLs()}
}

func (s *ValuationService) Submit(userID uint, in SubmitValuationInput) (*ValuationView, error) {
	city := strings.TrimSpace(in.City)
	district := strings.TrimSpace(in.District)
	purpose := in.Purpose
	if purpose == "" {
		purpose = "other"
	}
	if !domain.Contains(domain.ValuationPropertyTypes, in.PropertyType) || !domain.Contains(domain.ValuationPurposes, purpose) ||
		city == "" || district == "" || in.AreaSqm <= 0 ||
		in.Bedrooms < 0 || in.Bathrooms < 0 || in.AgeYears < 0 {
		return nil, ErrInvalidInput
	}
	v := &models.Valuation{
		UserID:       userID,
		PropertyType: in.PropertyType,
		City:         city,
		District:     district,
		AreaSqm:      in.AreaSqm,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		AgeYears:     in.AgeYears,
		Purpose:      purpose,
		Notes:        strings.TrimSpace(in.Notes),
		Status:       domain.ValuationStatusPending,
	}
	if err := s.valuations.Create(v); err != nil {
		return nil, fmt.Errorf("create valuation: %w", err)
	}
	view := viewValuation(v)
	return &view, nil
}

func (s *ValuationService) load(userID, id uint, isAdmin bool) (*models.Valuation, error) {
	v, err := s.valuations.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrValuationNotFound, "get valuation")
	}
	if !isAdmin && v.UserID != userID {
		return nil, ErrForbidden
	}
	return v, nil
}

func (s *ValuationService) Get(userID, id uint, isAdmin bool) (*ValuationView, error) {
	v, err := s.load(userID, id, isAdmin)
	if err != nil {
		return nil, err
	}
	view := viewValuation(v)
	return &view, nil
}

func views(list []models.Valuation) []ValuationView {
	out := make([]ValuationView, 0, len(list))
	for i := range list {
		out = append(out, viewValuation(&list[i]))
	}
	return out
}

func (s *ValuationService) ListMine(userID uint, limit, offset int) ([]ValuationView, error) {
	list, err := s.valuations.ListByUser(userID, clampLimit(limit, 20, 100), offset)
	if err != nil {
		return nil, fmt.Errorf("list valuations: %w", err)
	}
	return views(list), nil
}

func (s *ValuationService) ListPending(limit, offset int) ([]ValuationView, error) {
	list, err := s.valuations.ListByStatus(domain.ValuationStatusPending, clampLimit(limit, 50, 200), offset)
	if err != nil {
		return nil, fmt.Errorf("list pending valuations: %w", err)
	}
	return views(list), nil
}

// Complete records the appraisal and derives SAR per square metre.
func (s *ValuationService) Complete(adminID, id uint, appraisedHalalas int64) (*ValuationView, error) {
	if appraisedHalalas <= 0 {
		return nil, ErrInvalidAmount
	}
	v, err := s.load(adminID, id, true)
	if err != nil {
		return nil, err
	}
	if v.Status != domain.ValuationStatusPending {
		return nil, ErrValuationDone
	}
	now := s.now()
	v.Status = domain.ValuationStatusCompleted
	v.AppraisedHalalas = appraisedHalalas
	v.PricePerSqm = math.Round(float64(appraisedHalalas)/domain.HalalasPerRiyal/v.AreaSqm*100) / 100
	v.CompletedAt = &now
	if err := s.valuations.Update(v); err != nil {
		return nil, fmt.Errorf("complete valuation: %w", err)
	}
	s.record(adminID, "valuation.complete", v.ID, fmt.Sprintf(`{"appraised_halalas":%d}`, appraisedHalalas))

	if err := s.notifier.Notify(v.UserID, domain.NotifValuationCompleted, "اكتمل التقييم",
		"القيمة التقديرية لعقارك "+FormatSAR(appraisedHalalas),
		map[string]interface{}{"valuation_id": v.ID}); err != nil {
		logger.Component("valuation").WithError(err).Warn("notify owner failed")
	}
	view := viewValuation(v)
	return &view, nil
}

func (s *ValuationService) Reject(adminID, id uint, reason string) (*ValuationView, error) {
	v, err := s.load(adminID, id, true)
	if err != nil {
		return nil, err
	}
	if v.Status != domain.ValuationStatusPending {
		return nil, ErrValuationDone
	}
	now := s.now()
	v.Status = domain.ValuationStatusRejected
	v.CompletedAt = &now
	if err := s.valuations.Update(v); err != nil {
		return nil, fmt.Errorf("reject valuation: %w", err)
	}
	s.record(adminID, "valuation.reject", v.ID, strconv.Quote(reason))
	view := viewValuation(v)
	return &view, nil
}

func (s *ValuationService) record(adminID uint, action string, id uint, metadata string) {
	if s.audit == nil {
		return
	}
	uid := adminID
	if err := s.audit.Create(&models.AuditLog{
		UserID:     &uid,
		Action:     action,
		Resource:   "valuation",
		ResourceID: strconv.FormatUint(uint64(id), 10),
		Metadata:   metadata,
	}); err != nil {
		logger.Component("valuation").WithError(err).Warn("audit log failed")
	}
}

type DistrictBand struct {
	District    string           `json:"district"`
	AvgPrice    float64          `json:"avg_price_per_sqm"`
	SampleCount int64            `json:"sample_count"`
	Band        domain.PriceBand `json:"band"`
	Color       string           `json:"color"`
}

type PriceMap struct {
	City      string         `json:"city"`
	Districts []DistrictBand `json:"districts"`
}

// PriceMap averages completed valuations per district and colours each by price band.
func (s *ValuationService) PriceMap(city string) (*PriceMap, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, ErrInvalidInput
	}
	rows, err := s.valuations.DistrictAverages(city)
	if err != nil {
		return nil, fmt.Errorf("district averages: %w", err)
	}
	out := &PriceMap{City: city, Districts: make([]DistrictBand, 0, len(rows))}
	for _, r := range rows {
		avg := math.Round(r.AvgPrice)
		band, color := domain.BandForPrice(avg)
		out.Districts = append(out.Districts, DistrictBand{
			District: r.District, AvgPrice: avg, SampleCount: r.SampleCount, Band: band, Color: color,
		})
	}
	return out, nil
}

func (s *ValuationService) AddPhoto(ctx context.Context, userID, id uint, file io.Reader) (*ValuationView, error) {
	if s.uploader == nil {
		return nil, ErrUploadsDisabled
	}
	v, err := s.load(userID, id, false)
	if err != nil {
		return nil, err
	}
	if len(v.PhotoURLs()) >= maxValuationPhotos {
		return nil, ErrInvalidInput
	}
	publicID := fmt.Sprintf("valuation_%d_%d", v.ID, s.now().UnixNano())
	res, err := s.uploader.UploadImage(ctx, file, s.folder+"/valuations", publicID)
	if err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	v.AddPhotoURL(res.URL)
	if err := s.valuations.Update(v); err != nil {
		return nil, fmt.Errorf("save photo: %w", err)
	}
	view := viewValuation(v)
	return &view, nil
}
