package attachment

import (
	"time"

	userDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/user"
)

type Attachment struct {
	ID           int64               `gorm:"primaryKey"`
	TaskID       int64               `gorm:"column:task_id;not null;index"`
	File         string              `gorm:"column:file;not null"`
	Filename     string              `gorm:"column:filename;not null"`
	ContentType  string              `gorm:"column:content_type"`
	Size         int64               `gorm:"column:size"`
	UploadedByID int64               `gorm:"column:uploaded_by_id;not null"`
	UploadedBy   *userDatamodel.User `gorm:"foreignKey:UploadedByID"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (Attachment) TableName() string {
	return "tasks_taskattachment"
}
