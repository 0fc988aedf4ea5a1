package model

// Department 院系，对应 departments
type Department struct {
	ID   int    `gorm:"primaryKey;autoIncrement"          json:"id"`
	Name string `gorm:"type:varchar(250);not null;unique" json:"name"`
	BaseModel
}

// TableName 指定表名
func (Department) TableName() string { return "departments" }
