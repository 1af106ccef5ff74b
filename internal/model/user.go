package model

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Name      string   `gorm:"size:100" json:"name"`
	Email     string   `gorm:"size:100;unique;not null" json:"email"`
	Password  string   `gorm:"size:100;not null" json:"-"`
	Role      UserRole `gorm:"size:20;default:'student'" json:"role"`
	Bio       string   `gorm:"type:text" json:"bio"`
	Portfolio string   `gorm:"size:255" json:"portfolio"`
}

func (User) TableName() string {
	return "users"
}
