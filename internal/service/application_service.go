package service

import (
	"context"
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// ApplicationService 处理入学申请。
type ApplicationService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// ApplicationInput 前台申请表字段。
type ApplicationInput struct {
	ApplicantName  string
	ApplicantEmail string
	ApplicantPhone string
	ParentName     string
	ParentPhone    string
	GradeLevel     string
	Program        string
	PreviousSchool string
	Notes          string
	Documents      []db.ApplicationDocument
}

// ApplicationFilter 后台筛选条件。
type ApplicationFilter struct {
	Status  string
	Search  string
	Page    int
	PerPage int
}

// ApplicationListResult 分页结果。
type ApplicationListResult struct {
	Items      []db.StudentApplication `json:"items"`
	Total      int64                   `json:"total"`
	TotalPages int                     `json:"total_pages"`
	Page       int                     `json:"page"`
	PerPage    int                     `json:"per_page"`
}

// NewApplicationService 创建 ApplicationService。
func NewApplicationService(gdb *gorm.DB, notifier Notifier) *ApplicationService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ApplicationService{db: gdb, notifier: notifier, now: time.Now}
}

// Submit 保存申请，状态为 pending，并提醒后台。
func (s *ApplicationService) Submit(ctx context.Context, input ApplicationInput) (*db.StudentApplication, error) {
	if err := firstError(
		required("applicant_name", input.ApplicantName),
		required("applicant_email", input.ApplicantEmail),
		required("parent_name", input.ParentName),
		required("parent_phone", input.ParentPhone),
		required("grade_level", input.GradeLevel),
		required("program", input.Program),
	); err != nil {
		return nil, err
	}
	if !IsEmail(input.ApplicantEmail) {
		return nil, invalid("applicant_email", "must be a valid email address")
	}

	documents := make([]db.ApplicationDocument, 0, len(input.Documents))
	for _, doc := range input.Documents {
		doc.URL = strings.TrimSpace(doc.URL)
		if doc.URL == "" {
			continue
		}
		doc.Name = strings.TrimSpace(doc.Name)
		documents = append(documents, doc)
	}

	app := db.StudentApplication{
		ApplicantName:  strings.TrimSpace(input.ApplicantName),
		ApplicantEmail: normalizeEmail(input.ApplicantEmail),
		ApplicantPhone: strings.TrimSpace(input.ApplicantPhone),
		ParentName:     strings.TrimSpace(input.ParentName),
		ParentPhone:    strings.TrimSpace(input.ParentPhone),
		GradeLevel:     strings.TrimSpace(input.GradeLevel),
		Program:        strings.TrimSpace(input.Program),
		PreviousSchool: strings.TrimSpace(input.PreviousSchool),
		Notes:          strings.TrimSpace(input.Notes),
		Documents:      documents,
		Status:         db.ApplicationPending,
		SubmittedAt:    s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&app).Error; err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, applicationEvent(&app))
	return &app, nil
}

// List 分页查询，最新提交的在前。
func (s *ApplicationService) List(filter ApplicationFilter) (ApplicationListResult, error) {
	result := ApplicationListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 20),
	}

	query := s.db.Model(&db.StudentApplication{})
	if status := strings.ToLower(strings.TrimSpace(filter.Status)); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("applicant_name LIKE ? OR applicant_email LIKE ? OR parent_name LIKE ? OR program LIKE ?", like, like, like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	if err := query.Order("submitted_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}
	return result, nil
}

// Get 读取申请。
func (s *ApplicationService) Get(id uint) (*db.StudentApplication, error) {
	var app db.StudentApplication
	if err := s.db.First(&app, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &app, nil
}

// UpdateStatus 修改审核状态并记录审核时间，notes 为 nil 时保留原备注。
func (s *ApplicationService) UpdateStatus(id uint, status string, notes *string) (*db.StudentApplication, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !oneOf(status, db.ApplicationStatuses) {
		return nil, invalid("status", "must be one of "+strings.Join(db.ApplicationStatuses, ", "))
	}

	app, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	app.Status = status
	if status == db.ApplicationPending {
		app.ReviewedAt = nil
	} else {
		reviewed := s.now().UTC()
		app.ReviewedAt = &reviewed
	}
	if notes != nil {
		app.Notes = strings.TrimSpace(*notes)
	}
	if err := s.db.Save(app).Error; err != nil {
		return nil, err
	}
	return app, nil
}

// Delete 删除申请。
func (s *ApplicationService) Delete(id uint) error {
	result := s.db.Delete(&db.StudentApplication{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus 返回每个状态的申请数，缺失的状态为 0。
func (s *ApplicationService) CountByStatus() (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	if err := s.db.Model(&db.StudentApplication{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(db.ApplicationStatuses))
	for _, status := range db.ApplicationStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}
