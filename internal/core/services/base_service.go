package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/middleware"
)

// BaseService provides common functionality for all services.
type BaseService struct {
	Users portssvc.UserReaderSvc
}

// GetLogger gets the logger from context or returns a default one.
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	logger := middleware.GetLoggerFromCtx(ctx)
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// LogError logs an error with consistent formatting.
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+2)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// RequireManager checks that the acting user holds the manage-requests
// capability and returns the user on success. All privileged mutations
// (status decisions, budget edits, cashbook writes, deletes of foreign
// data) funnel through this single check.
// Returns apperrors.ErrForbidden when the capability is missing.
func (s *BaseService) RequireManager(ctx context.Context, actorUserID string) (*domain.User, error) {
	actor, err := s.Users.GetUserByID(ctx, actorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrForbidden
		}
		return nil, fmt.Errorf("failed to resolve acting user %s: %w", actorUserID, err)
	}
	if !actor.Role.CanManageRequests() {
		s.GetLogger(ctx).Warn("Capability check failed",
			slog.String("user_id", actorUserID),
			slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}
	return actor, nil
}
