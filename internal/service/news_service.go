package service

import (
	"bytes"
	"errors"
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/schoolsite/internal/db"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"
)

const excerptLength = 200

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML(), gmhtml.WithUnsafe()),
	)
	contentPolicy = buildContentPolicy()
	textPolicy    = bluemonday.StrictPolicy()
)

// NewsService 管理新闻与公告。
type NewsService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewsInput 新闻字段。Excerpt 为空时从正文自动截取。
type NewsInput struct {
	Title       string
	Excerpt     string
	Content     string
	Category    string
	ImageURL    string
	IsPublished bool
	IsFeatured  bool
}

// NewsFilter 后台列表筛选条件，Published 为 nil 表示不过滤。
type NewsFilter struct {
	Search    string
	Category  string
	Published *bool
	Page      int
	PerPage   int
}

// NewsListResult 分页结果。
type NewsListResult struct {
	Items      []db.NewsItem `json:"items"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	Page       int           `json:"page"`
	PerPage    int           `json:"per_page"`
}

// NewNewsService 创建 NewsService。
func NewNewsService(gdb *gorm.DB) *NewsService {
	return &NewsService{db: gdb, now: time.Now}
}

// ListPublished 返回已发布新闻，按发布时间倒序。
func (s *NewsService) ListPublished(page, perPage int) (NewsListResult, error) {
	published := true
	return s.List(NewsFilter{Published: &published, Page: page, PerPage: perPage})
}

// ListFeatured 返回已发布且置顶的新闻。
func (s *NewsService) ListFeatured(limit int) ([]db.NewsItem, error) {
	if limit <= 0 {
		limit = 3
	}
	var items []db.NewsItem
	if err := s.db.Where("is_published = ? AND is_featured = ?", true, true).
		Order("published_at desc").Order("id desc").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// List 按条件分页查询。
func (s *NewsService) List(filter NewsFilter) (NewsListResult, error) {
	result := NewsListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 9),
	}

	query := s.db.Model(&db.NewsItem{})
	if filter.Published != nil {
		query = query.Where("is_published = ?", *filter.Published)
	}
	if category := strings.TrimSpace(filter.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR excerpt LIKE ? OR content LIKE ?", like, like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	orderBy := "created_at desc, id desc"
	if filter.Published != nil && *filter.Published {
		orderBy = "published_at desc, id desc"
	}
	if err := query.Order(orderBy).
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}
	return result, nil
}

// Get 读取任意状态的新闻。
func (s *NewsService) Get(id uint) (*db.NewsItem, error) {
	var item db.NewsItem
	if err := s.db.First(&item, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

// GetPublished 只读取已发布新闻，未发布视为不存在。
func (s *NewsService) GetPublished(id uint) (*db.NewsItem, error) {
	var item db.NewsItem
	if err := s.db.Where("is_published = ?", true).First(&item, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &item, nil
}

// Create 新增新闻，发布时写入 published_at。
func (s *NewsService) Create(input NewsInput) (*db.NewsItem, error) {
	var item db.NewsItem
	if err := s.apply(&item, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update 更新新闻。首次发布写入 published_at，取消发布保留原值。
func (s *NewsService) Update(id uint, input NewsInput) (*db.NewsItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(item, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete 删除新闻。
func (s *NewsService) Delete(id uint) error {
	result := s.db.Delete(&db.NewsItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountPublished 返回已发布新闻数量。
func (s *NewsService) CountPublished() (int64, error) {
	var total int64
	err := s.db.Model(&db.NewsItem{}).Where("is_published = ?", true).Count(&total).Error
	return total, err
}

func (s *NewsService) apply(item *db.NewsItem, input NewsInput) error {
	if err := firstError(
		required("title", input.Title),
		required("content", input.Content),
	); err != nil {
		return err
	}

	item.Title = strings.TrimSpace(input.Title)
	item.Content = strings.TrimSpace(input.Content)
	item.Category = strings.TrimSpace(input.Category)
	item.ImageURL = strings.TrimSpace(input.ImageURL)
	item.Excerpt = strings.TrimSpace(input.Excerpt)
	if item.Excerpt == "" {
		item.Excerpt = DeriveExcerpt(item.Content, excerptLength)
	}
	item.IsFeatured = input.IsFeatured
	item.IsPublished = input.IsPublished
	if item.IsPublished && item.PublishedAt == nil {
		now := s.now().UTC()
		item.PublishedAt = &now
	}
	return nil
}

// RenderMarkdown 将 Markdown 渲染为经过 UGC 策略清洗的 HTML，独占一行的视频链接会变成播放器。
func RenderMarkdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(embedVideoLinks(source)), &buf); err != nil {
		return "", err
	}
	return contentPolicy.Sanitize(buf.String()), nil
}

// DeriveExcerpt 取 Markdown 正文的纯文本前 limit 个字符，超出部分以省略号结尾。
func DeriveExcerpt(source string, limit int) string {
	rendered, err := RenderMarkdown(source)
	if err != nil {
		rendered = source
	}
	text := html.UnescapeString(textPolicy.Sanitize(rendered))
	text = strings.Join(strings.Fields(text), " ")
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func notFoundOr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
