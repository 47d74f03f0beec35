package db

import "time"

// 申请状态
const (
	ApplicationPending   = "pending"
	ApplicationReviewing = "reviewing"
	ApplicationApproved  = "approved"
	ApplicationRejected  = "rejected"
)

// ApplicationStatuses lists every accepted application status.
var ApplicationStatuses = []string{ApplicationPending, ApplicationReviewing, ApplicationApproved, ApplicationRejected}

// ApplicationDocument 是随申请上传的附件链接
type ApplicationDocument struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// StudentApplication 新生入学申请
type StudentApplication struct {
	Base
	ApplicantName  string                `gorm:"size:160;not null" json:"applicant_name"`
	ApplicantEmail string                `gorm:"size:255;not null" json:"applicant_email"`
	ApplicantPhone string                `gorm:"size:40" json:"applicant_phone"`
	ParentName     string                `gorm:"size:160;not null" json:"parent_name"`
	ParentPhone    string                `gorm:"size:40;not null" json:"parent_phone"`
	GradeLevel     string                `gorm:"size:40;not null" json:"grade_level"`
	Program        string                `gorm:"size:160;not null" json:"program"`
	PreviousSchool string                `gorm:"size:200" json:"previous_school"`
	Notes          string                `gorm:"type:text" json:"notes"`
	Documents      []ApplicationDocument `gorm:"serializer:json;type:text" json:"documents"`
	Status         string                `gorm:"size:20;index;default:pending" json:"status"`
	SubmittedAt    time.Time             `json:"submitted_at"`
	ReviewedAt     *time.Time            `json:"reviewed_at"`
}
