package model

import (
	"time"

	"gorm.io/datatypes"
)

// 上传类型
const (
	UploadKindDivisions   = "divisions"
	UploadKindCourses     = "courses"
	UploadKindEnrollments = "enrollments"
)

// UploadLog 表格上传记录，对应 upload_logs
type UploadLog struct {
	ID         string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Kind       string         `gorm:"type:varchar(20);not null"                     json:"kind"`
	Filename   string         `gorm:"type:varchar(255);not null"                    json:"filename"`
	UploadedBy *string        `gorm:"type:varchar(64)"                              json:"uploaded_by,omitempty"`
	Total      int            `gorm:"not null;default:0"                            json:"total"`
	Succeeded  int            `gorm:"not null;default:0"                            json:"succeeded"`
	Report     datatypes.JSON `gorm:"type:jsonb;not null"                           json:"report"`
	CreatedAt  time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"            json:"created_at"`
}

// TableName 指定表名
func (UploadLog) TableName() string { return "upload_logs" }
