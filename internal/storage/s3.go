package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"task-tracker/internal/domain"
)

// S3Archiver writes deleted task snapshots to Amazon S3 (or compatible APIs).
type S3Archiver struct {
	uploader  *manager.Uploader
	bucket    string
	keyPrefix string
}

func NewS3Archiver(client manager.UploadAPIClient, bucket, keyPrefix string) (*S3Archiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}
	return &S3Archiver{
		uploader:  manager.NewUploader(client),
		bucket:    bucket,
		keyPrefix: strings.Trim(keyPrefix, "/"),
	}, nil
}

type taskSnapshot struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CreatedBy   string     `json:"createdBy"`
	AssignedTo  *string    `json:"assignedTo"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DeletedAt   time.Time  `json:"deletedAt"`
}

func (s *S3Archiver) ArchiveTask(ctx context.Context, task domain.Task) (string, error) {
	body, err := json.Marshal(taskSnapshot{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		DueDate:     task.DueDate,
		CreatedBy:   task.CreatedBy,
		AssignedTo:  task.AssignedTo,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		DeletedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", fmt.Errorf("encode task snapshot: %w", err)
	}

	key := ObjectKey(s.keyPrefix, task)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		ACL:         types.ObjectCannedACLPrivate,
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}

// ObjectKey groups snapshots by owner: <prefix>/<owner>/<task>.json.
func ObjectKey(prefix string, task domain.Task) string {
	key := fmt.Sprintf("%s/%s.json", task.CreatedBy, task.ID)
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

var _ Archiver = (*S3Archiver)(nil)
