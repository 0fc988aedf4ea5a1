package model

// Division 专业方向 / 年级分组，对应 divisions
//
// Group=true 表示一年级分组（cohort），Private=true 表示自带规章的独立项目，
// Hours 为完成该方向所需的总学时。
type Division struct {
	ID            int    `gorm:"primaryKey;autoIncrement"   json:"id"`
	Name          string `gorm:"type:varchar(250);not null" json:"name"`
	Hours         int    `gorm:"not null;default:0"         json:"hours"`
	Private       bool   `gorm:"not null;default:false"     json:"private"`
	Group         bool   `gorm:"column:is_group;not null;default:false" json:"group"`
	RegulationID  int    `gorm:"not null;index"             json:"regulation_id"`
	Department1ID *int   `gorm:"column:department_1_id"     json:"department_1_id"`
	Department2ID *int   `gorm:"column:department_2_id"     json:"department_2_id"`
	BaseModel

	// 关联
	Regulation  *Regulation `gorm:"foreignKey:RegulationID"  json:"regulation,omitempty"`
	Department1 *Department `gorm:"foreignKey:Department1ID" json:"department_1,omitempty"`
	Department2 *Department `gorm:"foreignKey:Department2ID" json:"department_2,omitempty"`
}

// TableName 指定表名
func (Division) TableName() string { return "divisions" }
