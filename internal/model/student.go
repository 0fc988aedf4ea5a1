package model

// Student 学生，对应 students
//
// 各学时计数器只增不减，由学业进度计算在每次成绩入库后更新；
// GPA = TotalPoints / (RegisteredHours - ExcludedHours - ResearchHours)，分母为 0 时取 0。
type Student struct {
	ID              string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string  `gorm:"type:varchar(60);not null;index"               json:"name"`
	Level           int     `gorm:"not null;default:1"                            json:"level"`
	RegisteredHours int     `gorm:"not null;default:0"                            json:"registered_hours"`
	PassedHours     int     `gorm:"not null;default:0"                            json:"passed_hours"`
	ExcludedHours   int     `gorm:"not null;default:0"                            json:"excluded_hours"`
	ResearchHours   int     `gorm:"not null;default:0"                            json:"research_hours"`
	TotalPoints     float64 `gorm:"not null;default:0"                            json:"total_points"`
	GPA             float64 `gorm:"column:gpa;not null;default:0"                 json:"gpa"`
	TotalMark       float64 `gorm:"not null;default:0"                            json:"total_mark"`
	Graduate        bool    `gorm:"not null;default:false"                        json:"graduate"`
	GroupID         int     `gorm:"not null"                                      json:"group_id"`
	DivisionID      *int    `json:"division_id"`
	BaseModel

	// 关联
	Group    *Division `gorm:"foreignKey:GroupID"    json:"group,omitempty"`
	Division *Division `gorm:"foreignKey:DivisionID" json:"division,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
