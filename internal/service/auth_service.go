package service

import (
	"errors"
	"strings"

	"github.com/schoolsite/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLength = 6

var (
	// ErrInvalidCredentials 表示邮箱或密码错误。
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotAdmin 表示账号存在但没有后台权限。
	ErrNotAdmin = errors.New("only administrators have access")
)

// AuthService 负责后台账号的登录与创建。
type AuthService struct {
	db *gorm.DB
}

// NewAuthService 创建 AuthService。
func NewAuthService(gdb *gorm.DB) *AuthService {
	return &AuthService{db: gdb}
}

// Authenticate 校验邮箱与密码，只有管理员可以登录后台。
func (s *AuthService) Authenticate(email, password string) (*db.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	var user db.User
	if err := s.db.Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsAdmin() {
		return nil, ErrNotAdmin
	}
	return &user, nil
}

// GetUser 按 ID 读取账号。
func (s *AuthService) GetUser(id uint) (*db.User, error) {
	var user db.User
	if err := s.db.First(&user, id).Error; err != nil {
		return nil, notFoundOr(err)
	}
	return &user, nil
}

// CreateUser 创建账号，邮箱重复返回 ErrDuplicate。
func (s *AuthService) CreateUser(email, password, fullName, role string) (*db.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = db.RoleAdmin
	}
	if !oneOf(role, db.Roles) {
		return nil, invalid("role", "must be one of "+strings.Join(db.Roles, ", "))
	}

	email = normalizeEmail(email)
	var count int64
	if err := s.db.Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicate
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := db.User{
		Email:    email,
		Password: string(hashed),
		FullName: strings.TrimSpace(fullName),
		Role:     role,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, translateWriteError(err)
	}
	return &user, nil
}

// SetPassword 重置密码。
func (s *AuthService) SetPassword(email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	result := s.db.Model(&db.User{}).Where("email = ?", normalizeEmail(email)).Update("password", string(hashed))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func validateCredentials(email, password string) error {
	if !IsEmail(email) {
		return invalid("email", "must be a valid email address")
	}
	if len(password) < minPasswordLength {
		return invalid("password", "must be at least 6 characters")
	}
	return nil
}
