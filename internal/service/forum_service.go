package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"bithra/internal/models"
	"bithra/internal/repository"

	"gorm.io/gorm"
)

type forumStore interface {
	ListCategories() ([]repository.CategoryWithCount, error)
	GetCategoryBySlug(slug string) (*models.ForumCategory, error)
	ListPosts(categoryID uint, page, limit int) ([]models.ForumPost, int64, error)
	GetPost(id uint) (*models.ForumPost, error)
	IncrementViews(id uint) error
	CreatePost(p *models.ForumPost) error
	CreateReply(r *models.ForumReply) error
	DeletePost(id, authorID uint) (bool, error)
}

type reportStore interface {
	Create(report *models.ContentReport) error
	Exists(reporterID, postID uint) (bool, error)
	ListPending(limit int) ([]models.ContentReport, error)
}

const (
	maxPostTitle = 200
	maxPostBody  = 10000
)

type ForumService struct {
	forum   forumStore
	reports reportStore
}

func NewForumService(forum forumStore, reports reportStore) *ForumService {
	return &ForumService{forum: forum, reports: reports}
}

// Author is the public face of a forum user.
type Author struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

func authorOf(u models.User) Author {
	return Author{ID: u.ID, Username: u.Username, Name: u.DisplayName(), AvatarURL: u.AvatarURL}
}

type PostSummary struct {
	ID             uint      `json:"id"`
	CategoryID     uint      `json:"category_id"`
	Title          string    `json:"title"`
	Excerpt        string    `json:"excerpt"`
	Author         Author    `json:"author"`
	Views          int       `json:"views"`
	RepliesCount   int       `json:"replies_count"`
	LastActivityAt time.Time `json:"last_activity_at"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReplyView struct {
	ID        uint      `json:"id"`
	Body      string    `json:"body"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

type PostDetail struct {
	PostSummary
	Body    string      `json:"body"`
	Replies []ReplyView `json:"replies"`
}

func summarize(p *models.ForumPost) PostSummary {
	return PostSummary{
		ID:             p.ID,
		CategoryID:     p.CategoryID,
		Title:          p.Title,
		Excerpt:        truncate(p.Body, 160),
		Author:         authorOf(p.Author),
		Views:          p.Views,
		RepliesCount:   p.RepliesCount,
		LastActivityAt: p.LastActivityAt,
		CreatedAt:      p.CreatedAt,
	}
}

func (s *ForumService) Categories() ([]repository.CategoryWithCount, error) {
	cats, err := s.forum.ListCategories()
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

type PostPage struct {
	Category *models.ForumCategory `json:"category,omitempty"`
	Items    []PostSummary         `json:"items"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	Limit    int                   `json:"limit"`
}

// Posts lists posts by latest activity. An empty slug lists every category.
func (s *ForumService) Posts(slug string, page, limit int) (*PostPage, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit, 20, 50)
	out := &PostPage{Page: page, Limit: limit}
	var categoryID uint
	if slug != "" {
		cat, err := s.forum.GetCategoryBySlug(slug)
		if err != nil {
			return nil, notFound(err, ErrCategoryNotFound, "get category")
		}
		out.Category = cat
		categoryID = cat.ID
	}
	list, total, err := s.forum.ListPosts(categoryID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	out.Total = total
	out.Items = make([]PostSummary, 0, len(list))
	for i := range list {
		out.Items = append(out.Items, summarize(&list[i]))
	}
	return out, nil
}

// Post returns a post with its replies and counts the view.
func (s *ForumService) Post(id uint) (*PostDetail, error) {
	if err := s.forum.IncrementViews(id); err != nil {
		return nil, fmt.Errorf("count view: %w", err)
	}
	p, err := s.forum.GetPost(id)
	if err != nil {
		return nil, notFound(err, ErrPostNotFound, "get post")
	}
	d := &PostDetail{PostSummary: summarize(p), Body: p.Body, Replies: make([]ReplyView, 0, len(p.Replies))}
	d.Excerpt = ""
	for _, r := range p.Replies {
		d.Replies = append(d.Replies, ReplyView{ID: r.ID, Body: r.Body, Author: authorOf(r.Author), CreatedAt: r.CreatedAt})
	}
	return d, nil
}

type CreatePostInput struct {
	CategorySlug string `json:"category"`
	Title        string `json:"title"`
	Body         string `json:"body"`
}

func validText(s string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(s)
	return n >= minLen && n <= maxLen
}

func (s *ForumService) CreatePost(authorID uint, in CreatePostInput) (*models.ForumPost, error) {
	title := strings.TrimSpace(in.Title)
	body := strings.TrimSpace(in.Body)
	if !validText(title, 3, maxPostTitle) || !validText(body, 1, maxPostBody) {
		return nil, ErrInvalidInput
	}
	cat, err := s.forum.GetCategoryBySlug(in.CategorySlug)
	if err != nil {
		return nil, notFound(err, ErrCategoryNotFound, "get category")
	}
	p := &models.ForumPost{CategoryID: cat.ID, AuthorID: authorID, Title: title, Body: body}
	if err := s.forum.CreatePost(p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

func (s *ForumService) Reply(authorID, postID uint, body string) (*models.ForumReply, error) {
	body = strings.TrimSpace(body)
	if !validText(body, 1, maxPostBody) {
		return nil, ErrInvalidInput
	}
	if _, err := s.forum.GetPost(postID); err != nil {
		return nil, notFound(err, ErrPostNotFound, "get post")
	}
	r := &models.ForumReply{PostID: postID, AuthorID: authorID, Body: body}
	if err := s.forum.CreateReply(r); err != nil {
		return nil, fmt.Errorf("create reply: %w", err)
	}
	return r, nil
}

func (s *ForumService) DeletePost(authorID, postID uint) error {
	ok, err := s.forum.DeletePost(postID, authorID)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if ok {
		return nil
	}
	if _, err := s.forum.GetPost(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return ErrForbidden
}

type ReportInput struct {
	Reason  string `json:"reason"`
	Details string `json:"details"`
}

func (s *ForumService) ReportPost(reporterID, postID uint, in ReportInput) (*models.ContentReport, error) {
	reason := strings.TrimSpace(in.Reason)
	if !validText(reason, 1, 50) {
		return nil, ErrInvalidInput
	}
	if _, err := s.forum.GetPost(postID); err != nil {
		return nil, notFound(err, ErrPostNotFound, "get post")
	}
	exists, err := s.reports.Exists(reporterID, postID)
	if err != nil {
		return nil, fmt.Errorf("lookup report: %w", err)
	}
	if exists {
		return nil, ErrAlreadyReported
	}
	report := &models.ContentReport{ReporterID: reporterID, PostID: postID, Reason: reason, Details: in.Details, Status: "PENDING"}
	if err := s.reports.Create(report); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return report, nil
}

func (s *ForumService) PendingReports(limit int) ([]models.ContentReport, error) {
	list, err := s.reports.ListPending(clampLimit(limit, 50, 200))
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	if list == nil {
		list = []models.ContentReport{}
	}
	return list, nil
}
