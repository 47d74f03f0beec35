package service

import (
	"context"
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// ContactService 处理前台联系表单以及后台收件箱。
type ContactService struct {
	db       *gorm.DB
	notifier Notifier
}

// ContactInput 联系表单字段。
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewContactService 创建 ContactService，notifier 为空时不推送。
func NewContactService(gdb *gorm.DB, notifier Notifier) *ContactService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &ContactService{db: gdb, notifier: notifier}
}

// Submit 保存留言并提醒后台。
func (s *ContactService) Submit(ctx context.Context, input ContactInput) (*db.ContactMessage, error) {
	if err := firstError(
		required("name", input.Name),
		required("email", input.Email),
		required("message", input.Message),
	); err != nil {
		return nil, err
	}
	if !IsEmail(input.Email) {
		return nil, invalid("email", "must be a valid email address")
	}

	msg := db.ContactMessage{
		Name:      strings.TrimSpace(input.Name),
		Email:     normalizeEmail(input.Email),
		Subject:   strings.TrimSpace(input.Subject),
		Message:   strings.TrimSpace(input.Message),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, contactEvent(&msg))
	return &msg, nil
}

// List 返回留言，最新的在前。
func (s *ContactService) List(unreadOnly bool) ([]db.ContactMessage, error) {
	query := s.db.Order("created_at desc").Order("id desc")
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var messages []db.ContactMessage
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// MarkRead 设置已读状态。
func (s *ContactService) MarkRead(id uint, read bool) error {
	result := s.db.Model(&db.ContactMessage{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return s.existsOrNotFound(id)
	}
	return nil
}

// Delete 删除留言。
func (s *ContactService) Delete(id uint) error {
	result := s.db.Delete(&db.ContactMessage{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count 返回留言总数与未读数。
func (s *ContactService) Count() (total, unread int64, err error) {
	if err = s.db.Model(&db.ContactMessage{}).Count(&total).Error; err != nil {
		return 0, 0, err
	}
	if err = s.db.Model(&db.ContactMessage{}).Where("is_read = ?", false).Count(&unread).Error; err != nil {
		return 0, 0, err
	}
	return total, unread, nil
}

// 部分驱动在值未变化时 RowsAffected 为 0，需要再确认一次记录是否存在。
func (s *ContactService) existsOrNotFound(id uint) error {
	var count int64
	if err := s.db.Model(&db.ContactMessage{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return nil
}
