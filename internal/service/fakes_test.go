package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"bithra/internal/domain"
	"bithra/internal/models"
	"bithra/internal/repository"
	"bithra/pkg/cloudinary"

	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// users

type fakeUsers struct {
	byID   map[uint]*models.User
	nextID uint
}

func newFakeUsers(users ...*models.User) *fakeUsers {
	f := &fakeUsers{byID: map[uint]*models.User{}, nextID: 100}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(u *models.User) error {
	f.nextID++
	u.ID = f.nextID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = testNow
	}
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetByID(id uint) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByEmail(email string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByUsername(username string) (*models.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsers) GetByIDs(ids []uint) (map[uint]models.User, error) {
	out := map[uint]models.User{}
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out[id] = *u
		}
	}
	return out, nil
}

func (f *fakeUsers) Update(u *models.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) UpdateFCMToken(userID uint, token string) error {
	u, ok := f.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.FCMToken = token
	return nil
}

// referrals

type fakeReferrals struct {
	codes     map[uint]*models.ReferralCode
	referrals []*models.Referral
	users     *fakeUsers
	wallets   *fakeWallets
}

func newFakeReferrals(users *fakeUsers) *fakeReferrals {
	return &fakeReferrals{codes: map[uint]*models.ReferralCode{}, users: users}
}

func (f *fakeReferrals) addCode(userID uint, code string) {
	f.codes[userID] = &models.ReferralCode{ID: userID, UserID: userID, Code: code, IsActive: true}
}

func (f *fakeReferrals) GetOrCreateCode(userID uint) (*models.ReferralCode, error) {
	if rc, ok := f.codes[userID]; ok {
		return rc, nil
	}
	f.addCode(userID, fmt.Sprintf("CODE%04d", userID))
	return f.codes[userID], nil
}

func (f *fakeReferrals) GetByCode(code string) (*models.ReferralCode, error) {
	for _, rc := range f.codes {
		if rc.Code == code && rc.IsActive {
			return rc, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReferrals) CreateReferral(r *models.Referral) error {
	r.ID = uint(len(f.referrals) + 1)
	r.CreatedAt = testNow
	f.referrals = append(f.referrals, r)
	return nil
}

func (f *fakeReferrals) GetReferralByReferredUserID(userID uint) (*models.Referral, error) {
	for _, r := range f.referrals {
		if r.ReferredUserID == userID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReferrals) byID(id uint) *models.Referral {
	for _, r := range f.referrals {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func (f *fakeReferrals) MarkSuccessful(referralID uint, at time.Time) (bool, error) {
	r := f.byID(referralID)
	if r == nil || r.Status != domain.ReferralStatusPending {
		return false, nil
	}
	r.Status = domain.ReferralStatusSuccessful
	r.QualifiedAt = &at
	return true, nil
}

func (f *fakeReferrals) RecordCommission(referralID, referrerID uint, amount int64, max int, reference string) (bool, error) {
	r := f.byID(referralID)
	if r == nil || r.CommissionedCount >= max {
		return false, nil
	}
	if f.wallets != nil {
		if err := f.wallets.Credit(referrerID, amount, domain.WalletTxReferralCommission, reference); err != nil {
			return false, err
		}
	}
	r.CommissionedCount++
	r.CommissionHalalas += amount
	return true, nil
}

func (f *fakeReferrals) CountsForReferrer(referrerID uint) (*repository.ReferralCounts, error) {
	out := &repository.ReferralCounts{}
	for _, r := range f.referrals {
		if r.ReferrerID != referrerID {
			continue
		}
		out.Total++
		if r.Status == domain.ReferralStatusSuccessful {
			out.Successful++
		}
		out.CommissionHalalas += r.CommissionHalalas
	}
	return out, nil
}

func (f *fakeReferrals) ListByReferrerID(referrerID uint, limit, offset int) ([]models.Referral, error) {
	var out []models.Referral
	for _, r := range f.referrals {
		if r.ReferrerID == referrerID {
			cp := *r
			if f.users != nil {
				if u, ok := f.users.byID[r.ReferredUserID]; ok {
					cp.ReferredUser = *u
				}
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (f *fakeReferrals) TopReferrers(limit int) ([]repository.ScoreRow, error) {
	scores := map[uint]int64{}
	for _, r := range f.referrals {
		if r.Status == domain.ReferralStatusSuccessful {
			scores[r.ReferrerID]++
		}
	}
	return topRows(scores, limit), nil
}

func topRows(scores map[uint]int64, limit int) []repository.ScoreRow {
	rows := make([]repository.ScoreRow, 0, len(scores))
	for id, s := range scores {
		rows = append(rows, repository.ScoreRow{UserID: id, Score: s})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Score == rows[j].Score {
			return rows[i].UserID < rows[j].UserID
		}
		return rows[i].Score > rows[j].Score
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// wallets

type fakeWallets struct {
	balances   map[uint]int64
	txs        []models.WalletTransaction
	failCredit error
}

func newFakeWallets() *fakeWallets {
	return &fakeWallets{balances: map[uint]int64{}}
}

func (f *fakeWallets) Credit(userID uint, amount int64, txType, reference string) error {
	if amount <= 0 {
		return repository.ErrInvalidCredit
	}
	if f.failCredit != nil {
		return f.failCredit
	}
	f.balances[userID] += amount
	f.txs = append(f.txs, models.WalletTransaction{UserID: userID, AmountHalalas: amount, Type: txType, Reference: reference})
	return nil
}

func (f *fakeWallets) HasTransaction(userID uint, txType, reference string) (bool, error) {
	for _, t := range f.txs {
		if t.UserID == userID && t.Type == txType && t.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeWallets) GetOrCreate(userID uint) (*models.Wallet, error) {
	return &models.Wallet{UserID: userID, BalanceHalalas: f.balances[userID], Currency: domain.Currency}, nil
}

func (f *fakeWallets) ListTransactions(userID uint, limit, offset int) ([]models.WalletTransaction, error) {
	var out []models.WalletTransaction
	for _, t := range f.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeWallets) ofType(txType string) []models.WalletTransaction {
	var out []models.WalletTransaction
	for _, t := range f.txs {
		if t.Type == txType {
			out = append(out, t)
		}
	}
	return out
}

// notifier

type sentNotification struct {
	UserID uint
	Type   string
	Title  string
	Body   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Type: notifType, Title: title, Body: body})
	return nil
}

func (f *fakeNotifier) ofType(t string) []sentNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []sentNotification
	for _, n := range f.sent {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

// leaderboard bumps

type bump struct {
	Board  string
	UserID uint
	Delta  int64
}

type fakeBoard struct {
	bumps []bump
}

func (f *fakeBoard) Bump(ctx context.Context, board string, userID uint, delta int64) {
	f.bumps = append(f.bumps, bump{Board: board, UserID: userID, Delta: delta})
}

// projects

type fakeProjects struct {
	projects map[uint]*models.Project
	backings []models.Backing
	failBack error
}

func newFakeProjects(ps ...*models.Project) *fakeProjects {
	f := &fakeProjects{projects: map[uint]*models.Project{}}
	for _, p := range ps {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) Create(p *models.Project) error {
	p.ID = uint(len(f.projects) + 1)
	for i := range p.Packages {
		p.Packages[i].ID = uint(i + 1)
		p.Packages[i].ProjectID = p.ID
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjects) GetByID(id uint) (*models.Project, error) {
	if p, ok := f.projects[id]; ok {
		cp := *p
		cp.Packages = append([]models.ProjectPackage(nil), p.Packages...)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) GetByPublicID(publicID string) (*models.Project, error) {
	for _, p := range f.projects {
		if p.PublicID == publicID {
			return f.GetByID(p.ID)
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProjects) List(filter repository.ProjectFilter, page, limit int) ([]models.Project, int64, error) {
	var out []models.Project
	for _, p := range f.projects {
		if filter.CreatorID != 0 && p.CreatorID != filter.CreatorID {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeProjects) UpdateStatus(id uint, status string) error {
	f.projects[id].Status = status
	return nil
}

func (f *fakeProjects) UpdateCover(id uint, url string) error {
	f.projects[id].CoverURL = url
	return nil
}

func (f *fakeProjects) Back(b *models.Backing, check repository.BackingCheck) (*models.Project, error) {
	if f.failBack != nil {
		return nil, f.failBack
	}
	p, ok := f.projects[b.ProjectID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	var pkg *models.ProjectPackage
	if b.PackageID != nil {
		for i := range p.Packages {
			if p.Packages[i].ID == *b.PackageID {
				pkg = &p.Packages[i]
			}
		}
		if pkg == nil {
			return nil, repository.ErrPackageMismatch
		}
	}
	if err := check(p, pkg); err != nil {
		return nil, err
	}
	prior := false
	for _, existing := range f.backings {
		if existing.ProjectID == p.ID && existing.BackerID == b.BackerID {
			prior = true
		}
	}
	b.ID = uint(len(f.backings) + 1)
	f.backings = append(f.backings, *b)
	p.CurrentHalalas += b.AmountHalalas
	if !prior {
		p.BackersCount++
	}
	if p.Status == domain.ProjectStatusActive && p.CurrentHalalas >= p.GoalHalalas {
		p.Status = domain.ProjectStatusFunded
	}
	if pkg != nil {
		pkg.ClaimedCount++
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjects) ListBackingsByBacker(backerID uint, limit, offset int) ([]models.Backing, error) {
	var out []models.Backing
	for _, b := range f.backings {
		if b.BackerID == backerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeProjects) CountByCreator(creatorID uint) (int64, error) {
	var c int64
	for _, p := range f.projects {
		if p.CreatorID == creatorID {
			c++
		}
	}
	return c, nil
}

func (f *fakeProjects) BackingTotals(backerID uint) (int64, int64, error) {
	var count, sum int64
	for _, b := range f.backings {
		if b.BackerID == backerID {
			count++
			sum += b.AmountHalalas
		}
	}
	return count, sum, nil
}

func (f *fakeProjects) TopBackers(limit int) ([]repository.ScoreRow, error) {
	scores := map[uint]int64{}
	for _, b := range f.backings {
		scores[b.BackerID] += b.AmountHalalas
	}
	return topRows(scores, limit), nil
}

type qualifyCall struct {
	BackerID, BackingID uint
	Amount              int64
}

type fakeQualifier struct {
	calls []qualifyCall
}

func (f *fakeQualifier) QualifyBacking(ctx context.Context, backerID, backingID uint, amount int64) {
	f.calls = append(f.calls, qualifyCall{backerID, backingID, amount})
}

type fakeUploader struct {
	uploads   []string
	deleted   []string
	err       error
	deleteErr error
}

func (f *fakeUploader) UploadImage(ctx context.Context, file io.Reader, folder, publicID string) (cloudinary.UploadResult, error) {
	if f.err != nil {
		return cloudinary.UploadResult{}, f.err
	}
	f.uploads = append(f.uploads, folder+"/"+publicID)
	url := "https://res.cloudinary.com/bithra/image/upload/" + folder + "/" + publicID + ".jpg"
	return cloudinary.UploadResult{URL: url, PublicID: folder + "/" + publicID}, nil
}

func (f *fakeUploader) DeleteByURL(ctx context.Context, url string) error {
	f.deleted = append(f.deleted, url)
	return f.deleteErr
}

func newTestProject(id, creatorID uint) *models.Project {
	return &models.Project{
		ID:          id,
		PublicID:    "5f0c7f8e-3c57-4a8e-9a36-2b1f0c6c9d1" + string(rune('0'+id%10)),
		CreatorID:   creatorID,
		Title:       "برج الياسمين",
		Category:    "residential",
		City:        "الرياض",
		GoalHalalas: 100000,
		Status:      domain.ProjectStatusActive,
		EndsAt:      testNow.Add(10 * 24 * time.Hour),
		Packages: []models.ProjectPackage{
			{ID: 1, ProjectID: id, Title: "داعم", MinHalalas: 10000},
			{ID: 2, ProjectID: id, Title: "شريك", MinHalalas: 50000, MaxBackers: 1},
		},
	}
}
