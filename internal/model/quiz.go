package model

// swagger:model Quiz
type Quiz struct {
	BaseModel
	TeacherID  uint   `gorm:"index;not null" json:"teacherId"`
	Title      string `gorm:"size:255;not null" json:"title"`
	RetryLimit int    `gorm:"not null" json:"retryLimit"`
	TimeLimit  int    `gorm:"not null" json:"timeLimit"` // minutes
}

func (Quiz) TableName() string {
	return "quizzes"
}

// swagger:model Question
type Question struct {
	BaseModel
	QuizID       uint   `gorm:"index;not null" json:"quizId"`
	Text         string `gorm:"type:text;not null" json:"text"`
	CorrectIndex int    `gorm:"not null" json:"correctIndex"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"type:text;not null" json:"text"`
	Position   int    `json:"position"`
}

func (Choice) TableName() string {
	return "choices"
}
