package usecase

import (
	"context"
	"crypto/subtle"
	"errors"

	"patient-registration/config"
	"patient-registration/internal/delivery/dto"
	"patient-registration/internal/domain/entity"
	"patient-registration/internal/domain/repository"
	"patient-registration/pkg/jwt"
	"patient-registration/pkg/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrSessionRevoked     = errors.New("session has been revoked")
)

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, session *entity.Session) error
	// Authenticate turns a bearer token into the session it represents.
	Authenticate(ctx context.Context, token string) (*entity.Session, error)
}

type authUsecase struct {
	log         *logrus.Logger
	cfg         config.AuthConfig
	sessionRepo repository.SessionRepository
	jwtService  *jwt.JWTService
	metrics     *metrics.Metrics
}

func NewAuthUsecase(
	log *logrus.Logger,
	cfg config.AuthConfig,
	sessionRepo repository.SessionRepository,
	jwtService *jwt.JWTService,
	metrics *metrics.Metrics,
) AuthUsecase {
	return &authUsecase{
		log:         log,
		cfg:         cfg,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		metrics:     metrics,
	}
}

func (u *authUsecase) checkCredentials(username, password string) bool {
	usernameOK := subtle.ConstantTimeCompare([]byte(username), []byte(u.cfg.OperatorUsername)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passwordOK := bcrypt.CompareHashAndPassword([]byte(u.cfg.OperatorPasswordHash), []byte(password)) == nil
	return usernameOK && passwordOK
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if !u.checkCredentials(req.Username, req.Password) {
		u.metrics.LoginAttempts.WithLabelValues(metrics.StatusFailed).Inc()
		u.log.WithField("username", req.Username).Warn("Rejected operator login")
		return nil, ErrInvalidCredentials
	}

	token, tokenID, expiresAt, err := u.jwtService.GenerateSessionToken(req.Username)
	if err != nil {
		u.log.Warnf("Failed to generate session token: %+v", err)
		return nil, err
	}

	session := &entity.Session{
		Username:      req.Username,
		TokenID:       tokenID,
		Authenticated: true,
		ExpiresAt:     expiresAt,
	}

	if err := u.sessionRepo.Save(ctx, session, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store session: %+v", err)
		return nil, err
	}

	u.metrics.LoginAttempts.WithLabelValues(metrics.StatusOK).Inc()

	return &dto.TokenResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) Logout(ctx context.Context, session *entity.Session) error {
	if session == nil || !session.Authenticated {
		return ErrInvalidToken
	}

	if err := u.sessionRepo.Delete(ctx, session.Username, session.TokenID); err != nil {
		u.log.Warnf("Failed to delete session: %+v", err)
		return err
	}

	return nil
}

func (u *authUsecase) Authenticate(ctx context.Context, token string) (*entity.Session, error) {
	claims, err := u.jwtService.ValidateToken(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	exists, err := u.sessionRepo.Exists(ctx, claims.Username, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check session: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, ErrSessionRevoked
	}

	session := &entity.Session{
		Username:      claims.Username,
		TokenID:       claims.TokenID,
		Authenticated: true,
	}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}

	return session, nil
}
