package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bithra/config"
	"bithra/internal/domain"
	"bithra/internal/logger"
	"bithra/internal/metrics"
	"bithra/internal/models"

	"gorm.io/gorm"
)

type negotiationStore interface {
	Create(n *models.Negotiation) error
	GetByID(id uint) (*models.Negotiation, error)
	FindOpen(projectID, backerID uint) (*models.Negotiation, error)
	ListByUser(userID uint, limit, offset int) ([]models.Negotiation, error)
	CreateMessage(m *models.NegotiationMessage) error
	ListMessagesAfter(negotiationID, afterID uint, limit int) ([]models.NegotiationMessage, error)
	Transition(id uint, fromStatus, toStatus string, at time.Time) (bool, error)
	ExpireBefore(t time.Time) (int64, error)
}

type projectGetter interface {
	Get(ref string) (*ProjectView, error)
}

// Broadcaster fans negotiation events out to connected WebSocket clients.
type Broadcaster interface {
	BroadcastNegotiation(negotiationID uint, event string, payload interface{})
}

const (
	maxMessageLen   = 2000
	maxMessagesPage = 200
)

type NegotiationService struct {
	negotiations negotiationStore
	projects     projectGetter
	notifier     Notifier
	broadcaster  Broadcaster
	duration     time.Duration
	pollInterval time.Duration
	now          func() time.Time
}

func NewNegotiationService(negotiations negotiationStore, projects projectGetter, notifier Notifier, cfg config.NegotiationConfig) *NegotiationService {
	d := cfg.Duration
	if d <= 0 {
		d = 72 * time.Hour
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = 5 * time.Second
	}
	return &NegotiationService{
		negotiations: negotiations,
		projects:     projects,
		notifier:     notifier,
		duration:     d,
		pollInterval: poll,
		now:          time.Now,
	}
}

// SetBroadcaster attaches the WebSocket hub; the hub itself depends on this service.
func (s *NegotiationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

func (s *NegotiationService) broadcast(id uint, event string, payload interface{}) {
	if s.broadcaster != nil {
		s.broadcaster.BroadcastNegotiation(id, event, payload)
	}
}

type NegotiationView struct {
	*models.Negotiation
	Status           string `json:"status"`
	RemainingSeconds int64  `json:"remaining_seconds"`
}

// view reports OPEN negotiations past their window as EXPIRED before the job catches up.
func (s *NegotiationService) view(n *models.Negotiation) NegotiationView {
	now := s.now()
	status := n.Status
	if status == domain.NegotiationStatusOpen && !now.Before(n.ExpiresAt) {
		status = domain.NegotiationStatusExpired
	}
	return NegotiationView{Negotiation: n, Status: status, RemainingSeconds: n.RemainingSeconds(now)}
}

type OpenNegotiationInput struct {
	ProposedHalalas int64  `json:"proposed_halalas"`
	Message         string `json:"message"`
}

// Open starts a negotiation or returns the backer's current OPEN one. created is
// false when an existing negotiation was returned.
func (s *NegotiationService) Open(backerID uint, projectRef string, in OpenNegotiationInput) (view *NegotiationView, created bool, err error) {
	if in.ProposedHalalas < 0 {
		return nil, false, ErrInvalidAmount
	}
	p, err := s.projects.Get(projectRef)
	if err != nil {
		return nil, false, err
	}
	if p.CreatorID == backerID {
		return nil, false, ErrOwnProject
	}
	now := s.now()
	if !p.AcceptsBackings(now) {
		return nil, false, ErrProjectClosed
	}

	existing, err := s.negotiations.FindOpen(p.ID, backerID)
	switch {
	case err == nil && existing.AcceptsMessages(now):
		v := s.view(existing)
		return &v, false, nil
	case err == nil:
		if _, err := s.negotiations.Transition(existing.ID, domain.NegotiationStatusOpen, domain.NegotiationStatusExpired, now); err != nil {
			return nil, false, fmt.Errorf("expire negotiation: %w", err)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, fmt.Errorf("find negotiation: %w", err)
	}

	first := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(first) > maxMessageLen {
		return nil, false, ErrInvalidMessage
	}
	n := &models.Negotiation{
		ProjectID:       p.ID,
		CreatorID:       p.CreatorID,
		BackerID:        backerID,
		Status:          domain.NegotiationStatusOpen,
		ProposedHalalas: in.ProposedHalalas,
		ExpiresAt:       now.Add(s.duration),
	}
	if err := s.negotiations.Create(n); err != nil {
		return nil, false, fmt.Errorf("create negotiation: %w", err)
	}
	if first != "" {
		if err := s.negotiations.CreateMessage(&models.NegotiationMessage{NegotiationID: n.ID, SenderID: backerID, Content: first}); err != nil {
			return nil, false, fmt.Errorf("create message: %w", err)
		}
	}
	if err := s.notifier.Notify(p.CreatorID, domain.NotifNegotiationOpened, "طلب تفاوض جديد",
		"بدأ أحد الداعمين تفاوضاً على مشروع "+p.Title,
		map[string]interface{}{"negotiation_id": n.ID, "project_id": p.ID}); err != nil {
		logger.Component("negotiation").WithError(err).Warn("notify creator failed")
	}
	v := s.view(n)
	return &v, true, nil
}

func (s *NegotiationService) load(userID, id uint) (*models.Negotiation, error) {
	n, err := s.negotiations.GetByID(id)
	if err != nil {
		return nil, notFound(err, ErrNegotiationNotFound, "get negotiation")
	}
	if !n.IsParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return n, nil
}

func (s *NegotiationService) Get(userID, id uint) (*NegotiationView, error) {
	n, err := s.load(userID, id)
	if err != nil {
		return nil, err
	}
	v := s.view(n)
	return &v, nil
}

// Authorize reports whether userID may join the negotiation's live room.
func (s *NegotiationService) Authorize(userID, id uint) error {
	_, err := s.load(userID, id)
	return err
}

type MessagesPage struct {
	Messages            []models.NegotiationMessage `json:"messages"`
	Status              string                      `json:"status"`
	ExpiresAt           time.Time                   `json:"expires_at"`
	RemainingSeconds    int64                       `json:"remaining_seconds"`
	PollIntervalSeconds int                         `json:"poll_interval_seconds"`
	LastID              uint                        `json:"last_id"`
}

// Messages returns messages newer than afterID for incremental polling.
func (s *NegotiationService) Messages(userID, id, afterID uint, limit int) (*MessagesPage, error) {
	n, err := s.load(userID, id)
	if err != nil {
		return nil, err
	}
	msgs, err := s.negotiations.ListMessagesAfter(id, afterID, clampLimit(limit, 50, maxMessagesPage))
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	if msgs == nil {
		msgs = []models.NegotiationMessage{}
	}
	v := s.view(n)
	page := &MessagesPage{
		Messages:            msgs,
		Status:              v.Status,
		ExpiresAt:           n.ExpiresAt,
		RemainingSeconds:    v.RemainingSeconds,
		PollIntervalSeconds: int(s.pollInterval / time.Second),
		LastID:              afterID,
	}
	if len(msgs) > 0 {
		page.LastID = msgs[len(msgs)-1].ID
	}
	return page, nil
}

func (s *NegotiationService) Send(userID, id uint, content string) (*models.NegotiationMessage, error) {
	content = strings.TrimSpace(content)
	if l := utf8.RuneCountInString(content); l == 0 || l > maxMessageLen {
		return nil, ErrInvalidMessage
	}
	n, err := s.load(userID, id)
	if err != nil {
		return nil, err
	}
	if !n.AcceptsMessages(s.now()) {
		return nil, ErrNegotiationExpired
	}
	m := &models.NegotiationMessage{NegotiationID: id, SenderID: userID, Content: content}
	if err := s.negotiations.CreateMessage(m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	s.broadcast(id, "message", m)
	if err := s.notifier.Notify(n.Counterparty(userID), domain.NotifNegotiationMessage, "رسالة جديدة",
		truncate(content, 120), map[string]interface{}{"negotiation_id": id}); err != nil {
		logger.Component("negotiation").WithError(err).Warn("notify counterparty failed")
	}
	return m, nil
}

// Respond lets the creator close an OPEN negotiation as AGREED or DECLINED.
func (s *NegotiationService) Respond(creatorID, id uint, accept bool) (*NegotiationView, error) {
	n, err := s.load(creatorID, id)
	if err != nil {
		return nil, err
	}
	if n.CreatorID != creatorID {
		return nil, ErrNotCreator
	}
	now := s.now()
	if !n.AcceptsMessages(now) {
		return nil, ErrNegotiationExpired
	}
	to := domain.NegotiationStatusDeclined
	if accept {
		to = domain.NegotiationStatusAgreed
	}
	ok, err := s.negotiations.Transition(id, domain.NegotiationStatusOpen, to, now)
	if err != nil {
		return nil, fmt.Errorf("respond negotiation: %w", err)
	}
	if !ok {
		return nil, ErrNegotiationExpired
	}
	n.Status = to
	n.ClosedAt = &now
	s.broadcast(id, "status", map[string]interface{}{"status": to})

	body := "تم رفض عرضك"
	if accept {
		body = "تمت الموافقة على عرضك"
	}
	if err := s.notifier.Notify(n.BackerID, domain.NotifNegotiationClosed, "نتيجة التفاوض", body,
		map[string]interface{}{"negotiation_id": id, "status": to}); err != nil {
		logger.Component("negotiation").WithError(err).Warn("notify backer failed")
	}
	v := s.view(n)
	return &v, nil
}

// ExpireStale closes OPEN negotiations whose window ended before now.
func (s *NegotiationService) ExpireStale(now time.Time) (int64, error) {
	n, err := s.negotiations.ExpireBefore(now)
	if err != nil {
		return 0, fmt.Errorf("expire negotiations: %w", err)
	}
	metrics.NegotiationsExpired.Add(float64(n))
	return n, nil
}

func (s *NegotiationService) ListMine(userID uint, limit, offset int) ([]NegotiationView, error) {
	list, err := s.negotiations.ListByUser(userID, clampLimit(limit, 20, 100), offset)
	if err != nil {
		return nil, fmt.Errorf("list negotiations: %w", err)
	}
	out := make([]NegotiationView, 0, len(list))
	for i := range list {
		out = append(out, s.view(&list[i]))
	}
	return out, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
