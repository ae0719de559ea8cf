package service

import (
	"context"
	"strings"
	"time"

	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"
)

// SystemLogRecordInput 系统日志记录输入
type SystemLogRecordInput struct {
	ActorID   uint
	ActorRole string
	Action    string
	StoreID   uint
	RequestID string
	Detail    models.JSON
	CreatedAt time.Time
}

// SystemLogService 系统日志服务
type SystemLogService struct {
	repo repository.SystemLogRepository
}

// NewSystemLogService 创建系统日志服务
func NewSystemLogService(repo repository.SystemLogRepository) *SystemLogService {
	return &SystemLogService{repo: repo}
}

// Record 写入系统日志，缺少动作的记录直接忽略
func (s *SystemLogService) Record(input SystemLogRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return nil
	}
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return s.repo.Create(&models.SystemLog{
		ActorID:    input.ActorID,
		ActorRole:  strings.TrimSpace(input.ActorRole),
		Action:     action,
		StoreID:    input.StoreID,
		RequestID:  strings.TrimSpace(input.RequestID),
		DetailJSON: input.Detail,
		CreatedAt:  createdAt,
	})
}

// List 系统日志列表
func (s *SystemLogService) List(_ context.Context, filter repository.SystemLogListFilter) ([]models.SystemLog, int64, error) {
	logs, total, err := s.repo.List(filter)
	if err != nil {
		return nil, 0, persistenceFailure(err, 0, 0)
	}
	return logs, total, nil
}
