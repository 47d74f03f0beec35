package service

import (
	"errors"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const applicationTrendDays = 7

// AnalyticsService 负责站点访问统计与后台仪表盘数据。
type AnalyticsService struct {
	db *gorm.DB
}

// NewAnalyticsService 创建 AnalyticsService。
func NewAnalyticsService(gdb *gorm.DB) *AnalyticsService {
	return &AnalyticsService{db: gdb}
}

// HourlyTrafficPoint 是某个小时的 PV/UV。
type HourlyTrafficPoint struct {
	Hour           time.Time `json:"hour"`
	PageViews      uint64    `json:"page_views"`
	UniqueVisitors uint64    `json:"unique_visitors"`
}

// DailyCount 是某天的计数，Date 为 UTC 日期 YYYY-MM-DD。
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// Dashboard 汇总后台首页需要的数字。
type Dashboard struct {
	Applications         int64             `json:"applications"`
	PendingApplications  int64             `json:"pending_applications"`
	ApprovedApplications int64             `json:"approved_applications"`
	ContactMessages      int64             `json:"contact_messages"`
	UnreadMessages       int64             `json:"unread_messages"`
	ActiveSubscribers    int64             `json:"active_subscribers"`
	ActiveTestimonials   int64             `json:"active_testimonials"`
	ActiveTeamMembers    int64             `json:"active_team_members"`
	PublishedNews        int64             `json:"published_news"`
	UnreadChatMessages   int64             `json:"unread_chat_messages"`
	ApplicationTrend     []DailyCount      `json:"application_trend"`
	Feedback             []FeedbackSummary `json:"feedback"`
	PageViews24h         uint64            `json:"page_views_24h"`
	UniqueVisitors24h    uint64            `json:"unique_visitors_24h"`
}

// RecordSiteVisit 记录一次页面访问，按小时聚合 PV，并按访客去重 UV。
func (s *AnalyticsService) RecordSiteVisit(visitorID string, now time.Time) error {
	if visitorID == "" {
		return errors.New("invalid visitor id")
	}
	hour := now.UTC().Truncate(time.Hour)

	return s.db.Transaction(func(tx *gorm.DB) error {
		visit := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "hour"}, {Name: "visitor_id"}},
			DoNothing: true,
		}).Create(&db.SiteHourlyVisitor{Hour: hour, VisitorID: visitorID})
		if visit.Error != nil {
			return visit.Error
		}

		var newVisitor uint64
		if visit.RowsAffected == 1 {
			newVisitor = 1
		}

		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "hour"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"page_views":      gorm.Expr("page_views + 1"),
				"unique_visitors": gorm.Expr("unique_visitors + ?", newVisitor),
				"updated_at":      gorm.Expr("CURRENT_TIMESTAMP"),
			}),
		}).Create(&db.SiteHourlySnapshot{Hour: hour, PageViews: 1, UniqueVisitors: newVisitor}).Error
	})
}

// HourlyTrafficTrend 返回截至 now 所在小时的最近 hours 个小时的数据，缺失的小时补零，按时间升序。
func (s *AnalyticsService) HourlyTrafficTrend(now time.Time, hours int) ([]HourlyTrafficPoint, error) {
	if hours <= 0 {
		hours = 24
	}
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-time.Duration(hours-1) * time.Hour)

	var snapshots []db.SiteHourlySnapshot
	if err := s.db.Where("hour >= ? AND hour <= ?", start, end).Find(&snapshots).Error; err != nil {
		return nil, err
	}
	byHour := make(map[int64]db.SiteHourlySnapshot, len(snapshots))
	for _, snapshot := range snapshots {
		byHour[snapshot.Hour.UTC().Unix()] = snapshot
	}

	points := make([]HourlyTrafficPoint, 0, hours)
	for i := 0; i < hours; i++ {
		hour := start.Add(time.Duration(i) * time.Hour)
		point := HourlyTrafficPoint{Hour: hour}
		if snapshot, ok := byHour[hour.Unix()]; ok {
			point.PageViews = snapshot.PageViews
			point.UniqueVisitors = snapshot.UniqueVisitors
		}
		points = append(points, point)
	}
	return points, nil
}

// ApplicationTrend 返回最近 days 天每天提交的申请数，最早的在前，没有申请的日期为 0。
func (s *AnalyticsService) ApplicationTrend(now time.Time, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = applicationTrendDays
	}
	today := now.UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -(days - 1))

	var submitted []time.Time
	if err := s.db.Model(&db.StudentApplication{}).
		Where("submitted_at >= ?", start).
		Pluck("submitted_at", &submitted).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, days)
	for _, at := range submitted {
		counts[at.UTC().Format("2006-01-02")]++
	}

	trend := make([]DailyCount, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, DailyCount{Date: date, Count: counts[date]})
	}
	return trend, nil
}

// Dashboard 汇总仪表盘数据。
func (s *AnalyticsService) Dashboard(now time.Time) (Dashboard, error) {
	var dash Dashboard

	counters := []struct {
		target *int64
		query  *gorm.DB
	}{
		{&dash.Applications, s.db.Model(&db.StudentApplication{})},
		{&dash.PendingApplications, s.db.Model(&db.StudentApplication{}).Where("status = ?", db.ApplicationPending)},
		{&dash.ApprovedApplications, s.db.Model(&db.StudentApplication{}).Where("status = ?", db.ApplicationApproved)},
		{&dash.ContactMessages, s.db.Model(&db.ContactMessage{})},
		{&dash.UnreadMessages, s.db.Model(&db.ContactMessage{}).Where("is_read = ?", false)},
		{&dash.ActiveSubscribers, s.db.Model(&db.NewsletterSubscriber{}).Where("is_active = ?", true)},
		{&dash.ActiveTestimonials, s.db.Model(&db.Testimonial{}).Where("is_active = ?", true)},
		{&dash.ActiveTeamMembers, s.db.Model(&db.TeamMember{}).Where("is_active = ?", true)},
		{&dash.PublishedNews, s.db.Model(&db.NewsItem{}).Where("is_published = ?", true)},
		{&dash.UnreadChatMessages, s.db.Model(&db.ChatMessage{}).Where("is_from_admin = ? AND is_read = ?", false, false)},
	}
	for _, counter := range counters {
		if err := counter.query.Count(counter.target).Error; err != nil {
			return dash, err
		}
	}

	trend, err := s.ApplicationTrend(now, applicationTrendDays)
	if err != nil {
		return dash, err
	}
	dash.ApplicationTrend = trend

	feedback, err := NewFeedbackService(s.db).Summary()
	if err != nil {
		return dash, err
	}
	dash.Feedback = feedback

	traffic, err := s.HourlyTrafficTrend(now, 24)
	if err != nil {
		return dash, err
	}
	for _, point := range traffic {
		dash.PageViews24h += point.PageViews
	}
	unique, err := s.UniqueVisitors(now, 24)
	if err != nil {
		return dash, err
	}
	dash.UniqueVisitors24h = unique
	return dash, nil
}

// UniqueVisitors 统计最近 hours 个小时内的去重访客数，跨小时出现的访客只计一次。
func (s *AnalyticsService) UniqueVisitors(now time.Time, hours int) (uint64, error) {
	if hours <= 0 {
		hours = 24
	}
	end := now.UTC().Truncate(time.Hour)
	start := end.Add(-time.Duration(hours-1) * time.Hour)

	var total int64
	if err := s.db.Model(&db.SiteHourlyVisitor{}).
		Where("hour >= ? AND hour <= ?", start, end).
		Distinct("visitor_id").
		Count(&total).Error; err != nil {
		return 0, err
	}
	return uint64(total), nil
}
