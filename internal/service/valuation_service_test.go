package service

import (
	"context"
	"strings"
	"testing"

	"bithra/internal/domain"
	"bithra/internal/models"
	"bithra/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeValuations struct {
	items     map[uint]*models.Valuation
	districts []repository.DistrictPrice
}

func newFakeValuations() *fakeValuations {
	return &fakeValuations{items: map[uint]*models.Valuation{}}
}

func (f *fakeValuations) Create(v *models.Valuation) error {
	v.ID = uint(len(f.items) + 1)
	f.items[v.ID] = v
	return nil
}

func (f *fakeValuations) GetByID(id uint) (*models.Valuation, error) {
	v, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeValuations) Update(v *models.Valuation) error {
	cp := *v
	f.items[v.ID] = &cp
	return nil
}

func (f *fakeValuations) ListByUser(userID uint, limit, offset int) ([]models.Valuation, error) {
	var out []models.Valuation
	for id := uint(1); id <= uint(len(f.items)); id++ {
		if v := f.items[id]; v.UserID == userID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeValuations) ListByStatus(status string, limit, offset int) ([]models.Valuation, error) {
	var out []models.Valuation
	for id := uint(1); id <= uint(len(f.items)); id++ {
		if v := f.items[id]; v.Status == status {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (f *fakeValuations) DistrictAverages(city string) ([]repository.DistrictPrice, error) {
	return f.districts, nil
}

type fakeAudit struct {
	logs []models.AuditLog
}

func (f *fakeAudit) Create(l *models.AuditLog) error {
	f.logs = append(f.logs, *l)
	return nil
}

type valuationFixture struct {
	svc      *ValuationService
	store    *fakeValuations
	audit    *fakeAudit
	notifier *fakeNotifier
	uploader *fakeUploader
}

func newValuationFixture() *valuationFixture {
	f := &valuationFixture{store: newFakeValuations(), audit: &fakeAudit{}, notifier: &fakeNotifier{}, uploader: &fakeUploader{}}
	f.svc = NewValuationService(f.store, f.audit, f.notifier, f.uploader, "Bithra")
	f.svc.now = fixedClock
	return f
}

func validValuation() SubmitValuationInput {
	return SubmitValuationInput{PropertyType: "villa", City: "الرياض", District: "الملقا", AreaSqm: 400, Bedrooms: 5, Bathrooms: 4, AgeYears: 3}
}

func TestValuationService_Submit(t *testing.T) {
	f := newValuationFixture()

	v, err := f.svc.Submit(3, validValuation())
	require.NoError(t, err)
	assert.Equal(t, domain.ValuationStatusPending, v.Status)
	assert.Equal(t, "other", v.Purpose)
	assert.Equal(t, []string{}, v.PhotoURLs)

	mutations := []func(*SubmitValuationInput){
		func(in *SubmitValuationInput) { in.PropertyType = "castle" },
		func(in *SubmitValuationInput) { in.Purpose = "flip" },
		func(in *SubmitValuationInput) { in.City = " " },
		func(in *SubmitValuationInput) { in.District = "" },
		func(in *SubmitValuationInput) { in.AreaSqm = 0 },
		func(in *SubmitValuationInput) { in.Bedrooms = -1 },
		func(in *SubmitValuationInput) { in.AgeYears = -2 },
	}
	for i, mutate := range mutations {
		in := validValuation()
		mutate(&in)
		_, err := f.svc.Submit(3, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
}

func TestValuationService_Access(t *testing.T) {
	f := newValuationFixture()
	v, err := f.svc.Submit(3, validValuation())
	require.NoError(t, err)

	_, err = f.svc.Get(4, v.ID, false)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(4, v.ID, true)
	assert.NoError(t, err)
	_, err = f.svc.Get(3, 99, false)
	assert.ErrorIs(t, err, ErrValuationNotFound)

	mine, err := f.svc.ListMine(3, 0, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	pending, err := f.svc.ListPending(0, 0)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestValuationService_Complete(t *testing.T) {
	f := newValuationFixture()
	v, err := f.svc.Submit(3, validValuation())
	require.NoError(t, err)

	_, err = f.svc.Complete(1, v.ID, 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	done, err := f.svc.Complete(1, v.ID, 2_500_000*domain.HalalasPerRiyal)
	require.NoError(t, err)
	assert.Equal(t, domain.ValuationStatusCompleted, done.Status)
	assert.Equal(t, 6250.0, done.PricePerSqm)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, testNow, *done.CompletedAt)

	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, "valuation.complete", f.audit.logs[0].Action)
	assert.Equal(t, uint(1), *f.audit.logs[0].UserID)
	notes := f.notifier.ofType(domain.NotifValuationCompleted)
	require.Len(t, notes, 1)
	assert.Equal(t, uint(3), notes[0].UserID)

	_, err = f.svc.Complete(1, v.ID, 100)
	assert.ErrorIs(t, err, ErrValuationDone)
	_, err = f.svc.Reject(1, v.ID, "late")
	assert.ErrorIs(t, err, ErrValuationDone)

	other, err := f.svc.Submit(3, validValuation())
	require.NoError(t, err)
	rejected, err := f.svc.Reject(1, other.ID, "صور غير واضحة")
	require.NoError(t, err)
	assert.Equal(t, domain.ValuationStatusRejected, rejected.Status)
	assert.Equal(t, "valuation.reject", f.audit.logs[1].Action)
}

func TestValuationService_PriceMap(t *testing.T) {
	f := newValuationFixture()
	f.store.districts = []repository.DistrictPrice{
		{District: "الملقا", AvgPrice: 6249.6, SampleCount: 4},
		{District: "النسيم", AvgPrice: 2999.4, SampleCount: 2},
		{District: "الياسمين", AvgPrice: 4500, SampleCount: 7},
	}

	m, err := f.svc.PriceMap(" الرياض ")
	require.NoError(t, err)
	assert.Equal(t, "الرياض", m.City)
	require.Len(t, m.Districts, 3)
	assert.Equal(t, 6250.0, m.Districts[0].AvgPrice)
	assert.Equal(t, domain.PriceBandHigh, m.Districts[0].Band)
	assert.Equal(t, domain.PriceBandLow, m.Districts[1].Band)
	assert.Equal(t, "#22c55e", m.Districts[1].Color)
	assert.Equal(t, domain.PriceBandMedium, m.Districts[2].Band)

	_, err = f.svc.PriceMap("")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValuationService_AddPhoto(t *testing.T) {
	f := newValuationFixture()
	v, err := f.svc.Submit(3, validValuation())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = f.svc.AddPhoto(ctx, 4, v.ID, strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrForbidden)

	for i := 0; i < maxValuationPhotos; i++ {
		_, err = f.svc.AddPhoto(ctx, 3, v.ID, strings.NewReader("img"))
		require.NoError(t, err)
	}
	got, err := f.svc.Get(3, v.ID, false)
	require.NoError(t, err)
	assert.Len(t, got.PhotoURLs, maxValuationPhotos)
	assert.Contains(t, got.PhotoURLs[0], "Bithra/valuations/valuation_1_")

	_, err = f.svc.AddPhoto(ctx, 3, v.ID, strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	disabled := NewValuationService(f.store, f.audit, f.notifier, nil, "Bithra")
	_, err = disabled.AddPhoto(ctx, 3, v.ID, strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}
