package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// ErrAlreadySubscribed 表示邮箱已经处于订阅状态。
var ErrAlreadySubscribed = errors.New("email already subscribed")

// NewsletterService 处理邮件订阅。
type NewsletterService struct {
	db       *gorm.DB
	notifier Notifier
	now      func() time.Time
}

// NewNewsletterService 创建 NewsletterService。
func NewNewsletterService(gdb *gorm.DB, notifier Notifier) *NewsletterService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &NewsletterService{db: gdb, notifier: notifier, now: time.Now}
}

// Subscribe 订阅。已退订的邮箱会被重新激活，仍在订阅中的返回 ErrAlreadySubscribed。
func (s *NewsletterService) Subscribe(ctx context.Context, email, fullName string) (*db.NewsletterSubscriber, error) {
	email = normalizeEmail(email)
	if !IsEmail(email) {
		return nil, invalid("email", "must be a valid email address")
	}
	now := s.now().UTC()

	var subscriber db.NewsletterSubscriber
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&subscriber).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			subscriber = db.NewsletterSubscriber{
				Email:        email,
				FullName:     strings.TrimSpace(fullName),
				IsActive:     true,
				SubscribedAt: now,
			}
			return translateWriteError(tx.Create(&subscriber).Error)
		case err != nil:
			return err
		}

		if subscriber.IsActive {
			return ErrAlreadySubscribed
		}
		subscriber.IsActive = true
		subscriber.SubscribedAt = now
		subscriber.UnsubscribedAt = nil
		if name := strings.TrimSpace(fullName); name != "" {
			subscriber.FullName = name
		}
		return tx.Save(&subscriber).Error
	})
	if errors.Is(err, ErrDuplicate) {
		return nil, ErrAlreadySubscribed
	}
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, newsletterEvent(&subscriber))
	return &subscriber, nil
}

// Unsubscribe 退订，邮箱不存在时返回 ErrNotFound。
func (s *NewsletterService) Unsubscribe(email string) error {
	now := s.now().UTC()
	result := s.db.Model(&db.NewsletterSubscriber{}).
		Where("email = ?", normalizeEmail(email)).
		Updates(map[string]any{"is_active": false, "unsubscribed_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List 返回订阅者，最新的在前。
func (s *NewsletterService) List(activeOnly bool) ([]db.NewsletterSubscriber, error) {
	query := s.db.Order("subscribed_at desc").Order("id desc")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var subscribers []db.NewsletterSubscriber
	if err := query.Find(&subscribers).Error; err != nil {
		return nil, err
	}
	return subscribers, nil
}

// Delete 删除订阅者。
func (s *NewsletterService) Delete(id uint) error {
	result := s.db.Delete(&db.NewsletterSubscriber{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountActive 返回有效订阅数。
func (s *NewsletterService) CountActive() (int64, error) {
	var total int64
	err := s.db.Model(&db.NewsletterSubscriber{}).Where("is_active = ?", true).Count(&total).Error
	return total, err
}
