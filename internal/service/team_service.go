package service

import (
	"strings"

	"github.com/schoolsite/internal/db"
	"gorm.io/gorm"
)

// TeamService 管理教职员工介绍。
type TeamService struct {
	Collection[db.TeamMember]
}

// TeamMemberInput 为创建或更新员工时接受的字段。
type TeamMemberInput struct {
	FullName   string
	Position   string
	Department string
	Bio        string
	Quote      string
	PhotoURL   string
	OrderingInput
}

// NewTeamService 创建 TeamService。
func NewTeamService(gdb *gorm.DB) *TeamService {
	return &TeamService{Collection: newCollection[db.TeamMember](gdb)}
}

// Create 新增员工。
func (s *TeamService) Create(input TeamMemberInput) (*db.TeamMember, error) {
	var member db.TeamMember
	if err := s.apply(&member, input, true); err != nil {
		return nil, err
	}
	return s.create(&member)
}

// Update 替换员工的可编辑字段。
func (s *TeamService) Update(id uint, input TeamMemberInput) (*db.TeamMember, error) {
	member, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(member, input, false); err != nil {
		return nil, err
	}
	return s.save(member)
}

func (s *TeamService) apply(member *db.TeamMember, input TeamMemberInput, creating bool) error {
	if err := firstError(
		required("full_name", input.FullName),
		required("position", input.Position),
	); err != nil {
		return err
	}
	member.FullName = strings.TrimSpace(input.FullName)
	member.Position = strings.TrimSpace(input.Position)
	member.Department = strings.TrimSpace(input.Department)
	member.Bio = strings.TrimSpace(input.Bio)
	member.Quote = strings.TrimSpace(input.Quote)
	member.PhotoURL = strings.TrimSpace(input.PhotoURL)
	return s.applyOrdering(&member.Ordering, input.OrderingInput, creating)
}
