package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 角色取值与原站点的 app_role 一致。
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleParent  = "parent"
)

// Roles lists every accepted role.
var Roles = []string{RoleAdmin, RoleTeacher, RoleStudent, RoleParent}

// User 定义了后台账号模型
type User struct {
	Base
	Email    string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	FullName string `gorm:"size:120" json:"full_name"`
	Role     string `gorm:"size:20;index;not null" json:"role"`
}

// IsAdmin 报告账号是否具备后台访问权限。
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// EnsureAdmin 存在性检查：若提供的邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
// 已存在的账号不会被修改。
func EnsureAdmin(gdb *gorm.DB, email, password string) error {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&User{Email: trimmedEmail, Password: string(hashed), Role: RoleAdmin}).Error
	}

	return nil
}
