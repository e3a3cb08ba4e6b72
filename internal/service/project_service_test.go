package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"bithra/internal/domain"
	"bithra/internal/models"
	"bithra/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type projectFixture struct {
	svc       *ProjectService
	projects  *fakeProjects
	qualifier *fakeQualifier
	board     *fakeBoard
	notifier  *fakeNotifier
	uploader  *fakeUploader
}

func newProjectFixture(ps ...*models.Project) *projectFixture {
	f := &projectFixture{
		projects:  newFakeProjects(ps...),
		qualifier: &fakeQualifier{},
		board:     &fakeBoard{},
		notifier:  &fakeNotifier{},
		uploader:  &fakeUploader{},
	}
	f.svc = NewProjectService(f.projects, f.qualifier, f.board, f.notifier, f.uploader, "Bithra")
	f.svc.now = fixedClock
	return f
}

func uintPtr(v uint) *uint { return &v }

func TestProjectService_Create(t *testing.T) {
	f := newProjectFixture()

	v, err := f.svc.Create(7, CreateProjectInput{
		Title: "  مجمع النخيل ", Category: "commercial", City: "جدة", GoalHalalas: 5000000,
		Packages: []PackageInput{{Title: "مستثمر", MinHalalas: 100000, MaxBackers: 10}},
	})
	require.NoError(t, err)
	assert.Equal(t, "مجمع النخيل", v.Title)
	assert.Equal(t, domain.ProjectStatusActive, v.Status)
	assert.Len(t, v.PublicID, 36)
	assert.Equal(t, testNow.Add(30*24*time.Hour), v.EndsAt, "defaults to a 30 day campaign")
	assert.Equal(t, 30, v.DaysLeft)
	assert.Equal(t, 0.0, v.FundedPercent)
	require.Len(t, v.Packages, 1)

	bad := []CreateProjectInput{
		{Title: "", Category: "land", GoalHalalas: 1},
		{Title: "x", Category: "castle", GoalHalalas: 1},
		{Title: "x", Category: "land", GoalHalalas: 1, DurationDays: 91},
		{Title: "x", Category: "land", GoalHalalas: 1, DurationDays: -1},
		{Title: "x", Category: "land", GoalHalalas: 1, Packages: []PackageInput{{Title: "p", MinHalalas: 0}}},
		{Title: strings.Repeat("a", 201), Category: "land", GoalHalalas: 1},
	}
	for i, in := range bad {
		_, err := f.svc.Create(7, in)
		assert.ErrorIs(t, err, ErrInvalidInput, "case %d", i)
	}
	_, err = f.svc.Create(7, CreateProjectInput{Title: "x", Category: "land"})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestProjectService_Get(t *testing.T) {
	p := newTestProject(1, 7)
	p.CurrentHalalas = 123456
	f := newProjectFixture(p)

	v, err := f.svc.Get("1")
	require.NoError(t, err)
	assert.Equal(t, 123.5, v.FundedPercent, "uncapped, one decimal")
	assert.Equal(t, 10, v.DaysLeft)

	byUUID, err := f.svc.Get(p.PublicID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), byUUID.ID)

	_, err = f.svc.Get("42")
	assert.ErrorIs(t, err, ErrProjectNotFound)
	_, err = f.svc.Get("not-an-id")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectService_Back(t *testing.T) {
	f := newProjectFixture(newTestProject(1, 7))
	ctx := context.Background()

	res, err := f.svc.Back(ctx, 9, "1", BackInput{AmountHalalas: 60000, PackageID: uintPtr(2)})
	require.NoError(t, err)
	assert.Equal(t, int64(60000), res.Project.CurrentHalalas)
	assert.Equal(t, 1, res.Project.BackersCount)
	assert.Equal(t, domain.ProjectStatusActive, res.Project.Status)
	assert.Equal(t, 60.0, res.Project.FundedPercent)

	assert.Equal(t, []qualifyCall{{BackerID: 9, BackingID: res.Backing.ID, Amount: 60000}}, f.qualifier.calls)
	assert.Equal(t, []bump{{Board: domain.LeaderboardBackers, UserID: 9, Delta: 60000}}, f.board.bumps)
	require.Len(t, f.notifier.ofType(domain.NotifProjectBacked), 1)
	assert.Equal(t, uint(7), f.notifier.ofType(domain.NotifProjectBacked)[0].UserID)

	_, err = f.svc.Back(ctx, 10, "1", BackInput{AmountHalalas: 60000, PackageID: uintPtr(2)})
	assert.ErrorIs(t, err, ErrPackageSoldOut)

	res, err = f.svc.Back(ctx, 9, "1", BackInput{AmountHalalas: 40000})
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusFunded, res.Project.Status, "reaching the goal flips to FUNDED")
	assert.Equal(t, 1, res.Project.BackersCount, "repeat backer counted once")

	res, err = f.svc.Back(ctx, 11, "1", BackInput{AmountHalalas: 50000})
	require.NoError(t, err, "FUNDED projects keep accepting backings until the end date")
	assert.Equal(t, 150.0, res.Project.FundedPercent)
}

func TestProjectService_BackRejections(t *testing.T) {
	closed := newTestProject(2, 7)
	closed.Status = domain.ProjectStatusClosed
	ended := newTestProject(3, 7)
	ended.EndsAt = testNow.Add(-time.Minute)
	f := newProjectFixture(newTestProject(1, 7), closed, ended)
	ctx := context.Background()

	cases := []struct {
		name string
		ref  string
		user uint
		in   BackInput
		want error
	}{
		{"zero amount", "1", 9, BackInput{AmountHalalas: 0}, ErrInvalidAmount},
		{"negative amount", "1", 9, BackInput{AmountHalalas: -5}, ErrInvalidAmount},
		{"below package minimum", "1", 9, BackInput{AmountHalalas: 9999, PackageID: uintPtr(1)}, ErrInvalidAmount},
		{"unknown package", "1", 9, BackInput{AmountHalalas: 10000, PackageID: uintPtr(99)}, ErrPackageNotFound},
		{"own project", "1", 7, BackInput{AmountHalalas: 10000}, ErrOwnProject},
		{"closed project", "2", 9, BackInput{AmountHalalas: 10000}, ErrProjectClosed},
		{"ended project", "3", 9, BackInput{AmountHalalas: 10000}, ErrProjectClosed},
		{"missing project", "404", 9, BackInput{AmountHalalas: 10000}, ErrProjectNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Back(ctx, tc.user, tc.ref, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	assert.Empty(t, f.projects.backings)
	assert.Empty(t, f.qualifier.calls)
}

func TestProjectService_BackStoreError(t *testing.T) {
	f := newProjectFixture(newTestProject(1, 7))
	f.projects.failBack = errors.New("deadlock")
	_, err := f.svc.Back(context.Background(), 9, "1", BackInput{AmountHalalas: 10000})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadlock")
	assert.Empty(t, f.qualifier.calls)
}

func TestProjectService_CloseAndCover(t *testing.T) {
	f := newProjectFixture(newTestProject(1, 7))
	ctx := context.Background()

	_, err := f.svc.Close(9, "1")
	assert.ErrorIs(t, err, ErrNotCreator)
	v, err := f.svc.Close(7, "1")
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectStatusClosed, v.Status)
	_, err = f.svc.Back(ctx, 9, "1", BackInput{AmountHalalas: 10000})
	assert.ErrorIs(t, err, ErrProjectClosed)

	_, err = f.svc.UploadCover(ctx, 9, "1", strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrNotCreator)
	url, err := f.svc.UploadCover(ctx, 7, "1", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Contains(t, url, "Bithra/projects/cover_")
	assert.Equal(t, url, f.projects.projects[1].CoverURL)

	noUploads := NewProjectService(f.projects, f.qualifier, f.board, f.notifier, nil, "Bithra")
	_, err = noUploads.UploadCover(ctx, 7, "1", strings.NewReader("img"))
	assert.ErrorIs(t, err, ErrUploadsDisabled)
}

func TestProjectService_UploadCoverReplacesPrevious(t *testing.T) {
	f := newProjectFixture(newTestProject(1, 7))
	ctx := context.Background()

	first, err := f.svc.UploadCover(ctx, 7, "1", strings.NewReader("a"))
	require.NoError(t, err)
	assert.Empty(t, f.uploader.deleted, "nothing to replace on the first upload")

	second, err := f.svc.UploadCover(ctx, 7, "1", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.Equal(t, []string{first}, f.uploader.deleted)
	assert.Equal(t, second, f.projects.projects[1].CoverURL)

	f.uploader.deleteErr = errors.New("cloudinary down")
	third, err := f.svc.UploadCover(ctx, 7, "1", strings.NewReader("c"))
	require.NoError(t, err, "a failed delete does not fail the upload")
	assert.Equal(t, third, f.projects.projects[1].CoverURL)
	assert.Equal(t, []string{first, second}, f.uploader.deleted)
}

func TestProjectService_ListMineAndBackings(t *testing.T) {
	f := newProjectFixture(newTestProject(1, 7), newTestProject(2, 8))
	page, err := f.svc.ListMine(7, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Limit)

	page, err = f.svc.List(repository.ProjectFilter{}, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, 50, page.Limit)
	assert.Len(t, page.Items, 2)

	list, err := f.svc.ListBackings(9, 0, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
