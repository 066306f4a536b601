package repository

import (
	"context"
	"time"

	"patient-registration/internal/domain/entity"
)

type SessionRepository interface {
	Save(ctx context.Context, session *entity.Session, ttl time.Duration) error
	Exists(ctx context.Context, username, tokenID string) (bool, error)
	Delete(ctx context.Context, username, tokenID string) error
}
