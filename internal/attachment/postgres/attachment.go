package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/task-management/internal/attachment"
	attachmentDatamodel "github.com/frahmantamala/task-management/internal/core/datamodel/attachment"
	"gorm.io/gorm"
)

type AttachmentRepository struct {
	db *gorm.DB
}

func NewAttachmentRepository(db *gorm.DB) attachment.RepositoryAPI {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) ListByTask(ctx context.Context, taskID int64) ([]*attachment.Attachment, error) {
	var rows []attachmentDatamodel.Attachment
	err := r.db.WithContext(ctx).Preload("UploadedBy").
		Where("task_id = ?", taskID).
		Order("created_at DESC, id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*attachment.Attachment, 0, len(rows))
	for i := range rows {
		out = append(out, attachment.FromDataModel(&rows[i]))
	}
	return out, nil
}

func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*attachment.Attachment, error) {
	var row attachmentDatamodel.Attachment
	if err := r.db.WithContext(ctx).Preload("UploadedBy").First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return attachment.FromDataModel(&row), nil
}

func (r *AttachmentRepository) Create(ctx context.Context, a *attachment.Attachment) error {
	row := &attachmentDatamodel.Attachment{
		TaskID:       a.TaskID,
		File:         a.File,
		Filename:     a.Filename,
		ContentType:  a.ContentType,
		Size:         a.Size,
		UploadedByID: a.UploadedByID,
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return err
	}
	a.ID = row.ID
	a.CreatedAt = row.CreatedAt
	return nil
}

func (r *AttachmentRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&attachmentDatamodel.Attachment{}, id).Error
}
