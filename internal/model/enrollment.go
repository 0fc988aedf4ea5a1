package model

// Enrollment 考试成绩记录，对应 enrollments
//
// (SeatID, Level, Semester, Year, Month, Mark, StudentID, CourseID) 相同即视为同一条成绩。
// Level / Semester 在表头缺失时记为 -1。Seq 由数据库自增，用于按录入顺序排列同一课程的多次考试。
type Enrollment struct {
	ID        string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Seq       int64   `gorm:"->"                                            json:"-"`
	SeatID    int     `gorm:"not null"                                      json:"seat_id"`
	Level     int     `gorm:"not null"                                      json:"level"`
	Semester  int     `gorm:"not null"                                      json:"semester"`
	Year      string  `gorm:"type:varchar(4);not null"                      json:"year"`
	Month     string  `gorm:"type:varchar(10);not null"                     json:"month"`
	Points    float64 `gorm:"not null"                                      json:"points"`
	Mark      float64 `gorm:"not null"                                      json:"mark"`
	FullMark  int     `gorm:"not null"                                      json:"full_mark"`
	Grade     string  `gorm:"type:varchar(10);not null"                     json:"grade"`
	StudentID string  `gorm:"type:uuid;not null;index"                      json:"student_id"`
	CourseID  int     `gorm:"not null"                                      json:"course_id"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }
