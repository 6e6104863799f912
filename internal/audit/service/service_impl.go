package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/GestionAscensores/elevarapp/internal/audit/domain"
	"github.com/GestionAscensores/elevarapp/internal/auditcontext"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  auditdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  auditdomain.Repository
}

func NewService(p ServiceParam) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

// Record appends an entry outside any transaction. Errors are logged and
// swallowed so the described operation is never rolled back by its audit.
func (s *Service) Record(ctx context.Context, tenantID snowflake.ID, entry auditdomain.Entry) {
	if err := s.RecordTx(ctx, s.db, tenantID, entry); err != nil {
		s.log.Warn("audit record failed",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// RecordTx appends an entry using an existing transaction so the audit row
// commits or rolls back with the operation it describes.
func (s *Service) RecordTx(ctx context.Context, tx *gorm.DB, tenantID snowflake.ID, entry auditdomain.Entry) error {
	if tenantID == 0 {
		return auditdomain.ErrInvalidTenant
	}
	if strings.TrimSpace(entry.Action) == "" {
		return auditdomain.ErrInvalidAction
	}

	record := &auditdomain.AuditLog{
		ID:         s.genID.Generate(),
		TenantID:   tenantID,
		Action:     entry.Action,
		TargetType: entry.TargetType,
		Metadata:   datatypes.JSONMap{},
		CreatedAt:  time.Now().UTC(),
	}
	if entry.TargetID != "" {
		targetID := entry.TargetID
		record.TargetID = &targetID
	}
	for key, value := range entry.Metadata {
		if strings.TrimSpace(key) == "" {
			continue
		}
		record.Metadata[key] = value
	}

	actorType, actorID := auditcontext.ActorFromContext(ctx)
	if actorType == "" {
		actorType = string(auditdomain.ActorTypeSystem)
	}
	record.ActorType = actorType
	if actorID != "" {
		record.ActorID = &actorID
	}
	if ip := auditcontext.IPAddressFromContext(ctx); ip != "" {
		record.IPAddress = &ip
	}
	if ua := auditcontext.UserAgentFromContext(ctx); ua != "" {
		record.UserAgent = &ua
	}

	return s.repo.Insert(ctx, tx, record)
}

func (s *Service) List(ctx context.Context, filter auditdomain.ListFilter) ([]*auditdomain.AuditLog, error) {
	if filter.TenantID == 0 {
		return nil, auditdomain.ErrInvalidTenant
	}
	return s.repo.List(ctx, s.db, filter)
}
