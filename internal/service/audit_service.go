package service

import (
	"context"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/verdantiq/cultiva-api/internal/models"
	appErrors "github.com/verdantiq/cultiva-api/pkg/errors"
)

type auditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter models.AuditLogFilter) ([]models.AuditLog, int, error)
	GetByID(ctx context.Context, id string) (*models.AuditLog, error)
}

// AuditService records and exposes the audit trail.
type AuditService struct {
	repo    auditRepository
	enabled bool
	logger  *zap.Logger
}

// NewAuditService constructs the service.
func NewAuditService(repo auditRepository, enabled bool, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{repo: repo, enabled: enabled, logger: logger}
}

// RecordRequest describes one audited event.
type RecordRequest struct {
	UserID     *string
	Action     string
	Resource   string
	ResourceID *string
	OldValues  interface{}
	NewValues  interface{}
	IPAddress  string
	UserAgent  string
}

// Record appends an audit entry. Failures are logged, never propagated: an
// audit problem must not break the operation it describes.
func (s *AuditService) Record(ctx context.Context, req RecordRequest) {
	if !s.enabled {
		return
	}
	entry := &models.AuditLog{
		UserID:     req.UserID,
		Action:     req.Action,
		Resource:   req.Resource,
		ResourceID: req.ResourceID,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	}
	if req.OldValues != nil {
		if raw, err := json.Marshal(req.OldValues); err == nil {
			entry.OldValues = raw
		}
	}
	if req.NewValues != nil {
		if raw, err := json.Marshal(req.NewValues); err == nil {
			entry.NewValues = raw
		}
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", req.Action), zap.String("resource", req.Resource), zap.Error(err))
	}
}

// AuditListRequest describes filters for listing audit records.
type AuditListRequest struct {
	UserID   string     `json:"user_id"`
	Resource string     `json:"resource"`
	Action   string     `json:"action"`
	DateFrom *time.Time `json:"date_from"`
	DateTo   *time.Time `json:"date_to"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// List returns audit records with pagination.
func (s *AuditService) List(ctx context.Context, req AuditListRequest) ([]models.AuditLog, *models.Pagination, error) {
	filter := models.AuditLogFilter{
		UserID:   req.UserID,
		Resource: req.Resource,
		Action:   req.Action,
		DateFrom: req.DateFrom,
		DateTo:   req.DateTo,
		Page:     req.Page,
		PageSize: req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return entries, pagination, nil
}

// Get fetches one audit record.
func (s *AuditService) Get(ctx context.Context, id string) (*models.AuditLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get audit log")
	}
	if entry == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "audit log not found")
	}
	return entry, nil
}

// Diff returns the changed fields between an entry's old and new snapshots,
// sorted by field name. Fields present in only one snapshot appear with the
// other side empty.
func (s *AuditService) Diff(ctx context.Context, id string) ([]models.AuditFieldDiff, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return DiffSnapshots(entry.OldValues, entry.NewValues)
}

// DiffSnapshots computes a field-level diff of two JSON object snapshots.
func DiffSnapshots(oldRaw, newRaw []byte) ([]models.AuditFieldDiff, error) {
	oldValues, err := decodeSnapshot(oldRaw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode old snapshot")
	}
	newValues, err := decodeSnapshot(newRaw)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode new snapshot")
	}

	fields := make(map[string]bool, len(oldValues)+len(newValues))
	for field := range oldValues {
		fields[field] = true
	}
	for field := range newValues {
		fields[field] = true
	}

	diffs := make([]models.AuditFieldDiff, 0)
	for field := range fields {
		oldVal, inOld := oldValues[field]
		newVal, inNew := newValues[field]
		if inOld && inNew && reflect.DeepEqual(oldVal, newVal) {
			continue
		}
		diffs = append(diffs, models.AuditFieldDiff{Field: field, Old: oldVal, New: newVal})
	}
	sort.Slice(diffs, func(i, j int) bool { return diffs[i].Field < diffs[j].Field })
	return diffs, nil
}

func decodeSnapshot(raw []byte) (map[string]interface{}, error) {
	if len(raw) == 0 {
		return map[string]interface{}{}, nil
	}
	values := make(map[string]interface{})
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}
