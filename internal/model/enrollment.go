package model

// Enrollment records that a user joined a course. The composite unique
// index is what makes concurrent duplicate enrollments impossible; the
// service layer must not rely on a check-then-insert.
//
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	UserID   uint `gorm:"uniqueIndex:idx_user_course;not null" json:"userId"`
	CourseID uint `gorm:"uniqueIndex:idx_user_course;not null" json:"courseId"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
