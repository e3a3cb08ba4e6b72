package models

import (
	"encoding/json"
	"testing"
	"time"

	"bithra/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_FundedPercent(t *testing.T) {
	p := &Project{GoalHalalas: 300000, CurrentHalalas: 100000}
	assert.Equal(t, 33.3, p.FundedPercent())

	p.CurrentHalalas = 450000
	assert.Equal(t, 150.0, p.FundedPercent())

	p.GoalHalalas = 0
	assert.Equal(t, 0.0, p.FundedPercent())
}

func TestProject_AcceptsBackingsAndDaysLeft(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Project{Status: domain.ProjectStatusActive, EndsAt: now.Add(36 * time.Hour)}

	assert.True(t, p.AcceptsBackings(now))
	assert.Equal(t, 2, p.DaysLeft(now))

	p.Status = domain.ProjectStatusFunded
	assert.True(t, p.AcceptsBackings(now))

	p.Status = domain.ProjectStatusClosed
	assert.False(t, p.AcceptsBackings(now))

	p.Status = domain.ProjectStatusActive
	assert.False(t, p.AcceptsBackings(now.Add(48*time.Hour)))
	assert.Equal(t, 0, p.DaysLeft(now.Add(48*time.Hour)))
}

func TestProjectPackage_SoldOut(t *testing.T) {
	assert.False(t, (&ProjectPackage{MaxBackers: 0, ClaimedCount: 1000}).SoldOut())
	assert.False(t, (&ProjectPackage{MaxBackers: 5, ClaimedCount: 4}).SoldOut())
	assert.True(t, (&ProjectPackage{MaxBackers: 5, ClaimedCount: 5}).SoldOut())
}

func TestNegotiation_Window(t *testing.T) {
	now := time.Now()
	n := &Negotiation{CreatorID: 1, BackerID: 2, Status: domain.NegotiationStatusOpen, ExpiresAt: now.Add(time.Hour)}

	assert.True(t, n.IsParticipant(1))
	assert.True(t, n.IsParticipant(2))
	assert.False(t, n.IsParticipant(3))
	assert.False(t, n.IsParticipant(0))
	assert.Equal(t, uint(2), n.Counterparty(1))
	assert.Equal(t, uint(1), n.Counterparty(2))

	assert.True(t, n.AcceptsMessages(now))
	assert.InDelta(t, 3600, n.RemainingSeconds(now), 1)
	assert.False(t, n.AcceptsMessages(now.Add(2*time.Hour)))
	assert.Equal(t, int64(0), n.RemainingSeconds(now.Add(2*time.Hour)))

	n.Status = domain.NegotiationStatusAgreed
	assert.False(t, n.AcceptsMessages(now))
	assert.Equal(t, int64(0), n.RemainingSeconds(now))
}

func TestValuation_Photos(t *testing.T) {
	v := &Valuation{}
	assert.Empty(t, v.PhotoURLs())
	v.AddPhotoURL("https://a")
	v.AddPhotoURL("https://b")
	assert.Equal(t, []string{"https://a", "https://b"}, v.PhotoURLs())
}

func TestUser_DisplayName(t *testing.T) {
	u := &User{Username: "sara"}
	assert.Equal(t, "sara", u.DisplayName())
	u.FullName = "سارة"
	assert.Equal(t, "سارة", u.DisplayName())
	assert.False(t, u.IsAdmin())
}

func TestNotification_MarshalJSON(t *testing.T) {
	n := Notification{ID: 3, UserID: 9, Type: domain.NotifProjectBacked, Title: "دعم جديد", Data: `{"project_id":12}`}
	out, err := json.Marshal(n)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"user_id":9,"type":"PROJECT_BACKED","title":"دعم جديد","body":"","read_at":null,
		"created_at":"0001-01-01T00:00:00Z","data":{"project_id":12},"read":false}`, string(out))

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n.ReadAt = &at
	n.Data = ""
	out, err = json.Marshal(n)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"data"`)
	assert.Contains(t, string(out), `"read":true`)
}
