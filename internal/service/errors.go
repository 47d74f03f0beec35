package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrNotFound 表示目标记录不存在。
	ErrNotFound = errors.New("record not found")
	// ErrInvalidInput 表示输入未通过校验，通常被 ValidationError 包装。
	ErrInvalidInput = errors.New("invalid input")
	// ErrDuplicate 表示唯一键冲突。
	ErrDuplicate = errors.New("duplicate record")
)

// ValidationError 描述单个字段的校验失败，可通过 errors.Is 匹配 ErrInvalidInput。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrInvalidInput, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// firstError 返回第一个非空错误。
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

var validate = validator.New()

// IsEmail 报告字符串是否为合法邮箱地址。
func IsEmail(value string) bool {
	return validate.Var(strings.TrimSpace(value), "required,email") == nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func oneOf(value string, allowed []string) bool {
	for _, candidate := range allowed {
		if value == candidate {
			return true
		}
	}
	return false
}

func normalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func normalizePerPage(perPage, fallback int) int {
	if perPage <= 0 {
		return fallback
	}
	if perPage > 100 {
		return 100
	}
	return perPage
}

func calculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total == 0 {
		return 1
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
