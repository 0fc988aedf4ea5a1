package model

// Course 课程，对应 courses，与 Division 多对多（course_divisions）
type Course struct {
	ID             int    `gorm:"primaryKey;autoIncrement"         json:"id"`
	Code           string `gorm:"type:varchar(10);not null;index"  json:"code"`
	Name           string `gorm:"type:varchar(60);not null"        json:"name"`
	LectureHours   int    `gorm:"not null"                         json:"lecture_hours"`
	PracticalHours int    `gorm:"not null"                         json:"practical_hours"`
	CreditHours    int    `gorm:"not null"                         json:"credit_hours"`
	Level          int    `gorm:"not null"                         json:"level"`
	Semester       int    `gorm:"not null"                         json:"semester"`
	Required       bool   `gorm:"not null"                         json:"required"`
	BaseModel

	Divisions []Division `gorm:"many2many:course_divisions;" json:"divisions,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }
