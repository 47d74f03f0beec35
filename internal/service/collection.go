package service

import (
	"errors"
	"fmt"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// OrderingInput 是可排序内容共享的可见性与排序字段，nil 表示沿用默认值或原值。
type OrderingInput struct {
	IsActive  *bool
	SortOrder *int
}

// Collection 封装带 is_active/sort_order 的内容表的通用读写。
// T 必须内嵌 db.Ordering。
type Collection[T any] struct {
	db *gorm.DB
}

func newCollection[T any](gdb *gorm.DB) Collection[T] {
	return Collection[T]{db: gdb}
}

// ListActive 返回前台可见的记录，按 sort_order 升序。
func (c Collection[T]) ListActive() ([]T, error) {
	var items []T
	if err := c.ordered(c.db.Where("is_active = ?", true)).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListAll 返回全部记录，供后台使用。
func (c Collection[T]) ListAll() ([]T, error) {
	var items []T
	if err := c.ordered(c.db).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get 按 ID 读取记录。
func (c Collection[T]) Get(id uint) (*T, error) {
	var item T
	if err := c.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Delete 硬删除记录，不存在时返回 ErrNotFound。
func (c Collection[T]) Delete(id uint) error {
	result := c.db.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Reorder 在同一事务中按 ids 的顺序重写 sort_order（0,1,2…）。
func (c Collection[T]) Reorder(ids []uint) error {
	if len(ids) == 0 {
		return invalid("ids", "must not be empty")
	}
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return invalid("ids", "must not contain duplicates")
		}
		seen[id] = struct{}{}
	}

	return c.db.Transaction(func(tx *gorm.DB) error {
		var found int64
		if err := tx.Model(new(T)).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return err
		}
		if found != int64(len(ids)) {
			return fmt.Errorf("%w: %d of %d ids exist", ErrNotFound, found, len(ids))
		}
		for index, id := range ids {
			if err := tx.Model(new(T)).Where("id = ?", id).Update("sort_order", index).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Count 返回记录数，activeOnly 为 true 时只统计可见记录。
func (c Collection[T]) Count(activeOnly bool) (int64, error) {
	var total int64
	query := c.db.Model(new(T))
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (c Collection[T]) ordered(query *gorm.DB) *gorm.DB {
	return query.Order("sort_order asc").Order("id asc")
}

func (c Collection[T]) create(item *T) (*T, error) {
	if err := c.db.Create(item).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return item, nil
}

func (c Collection[T]) save(item *T) (*T, error) {
	if err := c.db.Save(item).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return item, nil
}

// applyOrdering 写入可见性与排序。新建时 is_active 默认为 true，未指定排序则追加到末尾。
func (c Collection[T]) applyOrdering(target *db.Ordering, input OrderingInput, creating bool) error {
	if input.IsActive != nil {
		target.IsActive = *input.IsActive
	} else if creating {
		target.IsActive = true
	}

	switch {
	case input.SortOrder != nil:
		if *input.SortOrder < 0 {
			return invalid("sort_order", "must not be negative")
		}
		target.SortOrder = *input.SortOrder
	case creating:
		next, err := c.nextSortOrder()
		if err != nil {
			return err
		}
		target.SortOrder = next
	}
	return nil
}

func (c Collection[T]) nextSortOrder() (int, error) {
	var next int
	if err := c.db.Model(new(T)).
		Select("COALESCE(MAX(sort_order), -1) + 1").
		Scan(&next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}
