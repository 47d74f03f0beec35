package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// ProgramService 管理专业方向。
type ProgramService struct {
	Collection[db.Program]
}

// ProgramInput 专业字段。
type ProgramInput struct {
	Title       string
	Description string
	ImageURL    string
	Color       string
	OrderingInput
}

// NewProgramService 创建 ProgramService。
func NewProgramService(gdb *gorm.DB) *ProgramService {
	return &ProgramService{Collection: newCollection[db.Program](gdb)}
}

// Create 新增专业。
func (s *ProgramService) Create(input ProgramInput) (*db.Program, error) {
	var program db.Program
	if err := s.apply(&program, input, true); err != nil {
		return nil, err
	}
	return s.create(&program)
}

// Update 更新专业。
func (s *ProgramService) Update(id uint, input ProgramInput) (*db.Program, error) {
	program, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(program, input, false); err != nil {
		return nil, err
	}
	return s.save(program)
}

func (s *ProgramService) apply(program *db.Program, input ProgramInput, creating bool) error {
	if err := required("title", input.Title); err != nil {
		return err
	}
	program.Title = strings.TrimSpace(input.Title)
	program.Description = strings.TrimSpace(input.Description)
	program.ImageURL = strings.TrimSpace(input.ImageURL)
	program.Color = strings.TrimSpace(input.Color)
	return s.applyOrdering(&program.Ordering, input.OrderingInput, creating)
}
