package model

// Regulation 学业规章，对应 regulations
type Regulation struct {
	ID     int    `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name   string `gorm:"type:varchar(250);not null;unique" json:"name"`
	MaxGPA int    `gorm:"column:max_gpa;not null;default:4" json:"max_gpa"`
	BaseModel
}

// TableName 指定表名
func (Regulation) TableName() string { return "regulations" }
