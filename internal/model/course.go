package model

// Course is the top-level unit of instructional content. TeacherID is NULL
// when the course was published by an admin; such courses are editable by
// any teacher.
//
// swagger:model Course
type Course struct {
	BaseModel
	TeacherID   *uint  `gorm:"index" json:"teacherId"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Date        string `gorm:"size:50;not null" json:"date"`
	Description string `gorm:"type:text" json:"description"`
	ImageURL    string `gorm:"size:255" json:"imageUrl"`
	FileURL     string `gorm:"size:255" json:"fileUrl"`
	Students    int    `gorm:"default:0" json:"students"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Module
type Module struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Position int    `json:"position"`
}

func (Module) TableName() string {
	return "modules"
}

// Submaterial holds a single piece of content within a module. FileURL is
// either an uploaded asset path or an external video URL; empty means the
// submaterial has no attached content.
//
// swagger:model Submaterial
type Submaterial struct {
	BaseModel
	ModuleID uint   `gorm:"index;not null" json:"moduleId"`
	Title    string `gorm:"size:255;not null" json:"title"`
	FileURL  string `gorm:"size:512" json:"fileUrl"`
	Position int    `json:"position"`
}

func (Submaterial) TableName() string {
	return "submaterials"
}
