package account

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/swiftvtu/swiftvtu-api/internal/pkg/jwt"
	"github.com/swiftvtu/swiftvtu-api/internal/pkg/password"
)

// Service handles account and authentication business logic
type Service struct {
	repo       Repository
	jwtService *jwt.Service
	redis      *redis.Client // nil if Redis disabled
}

// NewService creates account service
func NewService(repo Repository, jwtService *jwt.Service, redis *redis.Client) *Service {
	return &Service{repo: repo, jwtService: jwtService, redis: redis}
}

// Register creates a new reseller account with a zero balance and a fresh
// referral code. A supplied referral code links the new account to its
// referrer.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	existing, _ := s.repo.GetByEmail(ctx, req.Email)
	if existing != nil {
		return nil, ErrEmailAlreadyExists
	}

	var referredBy uuid.NullUUID
	if req.ReferralCode != "" {
		referrer, err := s.repo.GetByReferralCode(ctx, strings.ToUpper(req.ReferralCode))
		if err != nil {
			return nil, err
		}
		if referrer == nil {
			return nil, ErrInvalidReferralCode
		}
		referredBy = uuid.NullUUID{UUID: referrer.ID, Valid: true}
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		ID:           uuid.New(),
		Email:        req.Email,
		Phone:        req.Phone,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         RoleUser,
		KYCTier:      1,
		ReferralCode: newReferralCode(),
		ReferredBy:   referredBy,
		Balance:      0,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}

	log.Info().
		Str("account_id", a.ID.String()).
		Str("referral_code", a.ReferralCode).
		Msg("Account registered")

	return s.generateTokens(ctx, a)
}

// Login authenticates an account
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)

	a, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil || a == nil {
		return nil, ErrInvalidCredentials
	}

	if !password.Verify(req.Password, a.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !a.IsActive {
		return nil, ErrAccountDisabled
	}

	return s.generateTokens(ctx, a)
}

// Refresh rotates the refresh token and issues a new access token
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, ErrRefreshTokenRequired
	}

	if _, err := s.jwtService.ValidateRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidRefreshToken
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	accountID, err := s.getRefreshToken(ctx, refreshHash)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil || a == nil {
		return nil, ErrNotFound
	}
	if !a.IsActive {
		return nil, ErrAccountDisabled
	}

	_ = s.deleteRefreshToken(ctx, refreshHash)

	return s.generateTokens(ctx, a)
}

// Logout invalidates the refresh token
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deleteRefreshToken(ctx, jwt.HashRefreshToken(refreshToken))
}

// Profile returns the account's profile view
func (s *Service) Profile(ctx context.Context, accountID uuid.UUID) (*ProfileResponse, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil || a == nil {
		return nil, ErrNotFound
	}
	return NewProfileResponse(a), nil
}

// Get returns the raw account entity
func (s *Service) Get(ctx context.Context, accountID uuid.UUID) (*Account, error) {
	a, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// Email returns the account's email for gateway checkout
func (s *Service) Email(ctx context.Context, accountID uuid.UUID) (string, error) {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return "", err
	}
	return a.Email, nil
}

// SetPIN sets or replaces the transaction PIN. Replacing requires the
// current PIN.
func (s *Service) SetPIN(ctx context.Context, accountID uuid.UUID, req *SetPINRequest) error {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if a.HasPIN() {
		if req.CurrentPIN == "" || !password.Verify(req.CurrentPIN, a.PINHash.String) {
			return ErrPINMismatch
		}
	}

	hash, err := password.Hash(req.PIN)
	if err != nil {
		return err
	}
	return s.repo.UpdatePIN(ctx, accountID, hash)
}

// VerifyPIN checks the transaction PIN before money moves. The PIN is
// opt-in: accounts without one pass the gate; once a PIN is set every
// money-moving request must carry it.
func (s *Service) VerifyPIN(ctx context.Context, accountID uuid.UUID, pin string) error {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}
	if !a.HasPIN() {
		return nil
	}
	if pin == "" {
		return ErrPINRequired
	}
	if !password.Verify(pin, a.PINHash.String) {
		return ErrPINMismatch
	}
	return nil
}

// ChangePassword updates the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, accountID uuid.UUID, req *ChangePasswordRequest) error {
	a, err := s.Get(ctx, accountID)
	if err != nil {
		return err
	}

	if !password.Verify(req.CurrentPassword, a.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := password.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, accountID, hash)
}

// SetActive enables or disables an account (admin)
func (s *Service) SetActive(ctx context.Context, accountID uuid.UUID, active bool) error {
	return s.repo.SetActive(ctx, accountID, active)
}

// List returns accounts for the admin console
func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Account, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, search, limit, offset)
}

// generateTokens creates access and refresh tokens
func (s *Service) generateTokens(ctx context.Context, a *Account) (*AuthResponse, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(a.ID, string(a.Role), a.KYCTier)
	if err != nil {
		return nil, err
	}

	refreshToken, _, _, err := s.jwtService.GenerateRefreshToken(a.ID)
	if err != nil {
		return nil, err
	}

	refreshHash := jwt.HashRefreshToken(refreshToken)
	if err := s.storeRefreshToken(ctx, refreshHash, a.ID); err != nil {
		return nil, err
	}

	return &AuthResponse{
		Account: NewProfileResponse(a),
		Tokens: TokensResponse{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ExpiresIn:    int(s.jwtService.GetAccessTTL().Seconds()),
		},
	}, nil
}

// newReferralCode generates a short shareable code, e.g. SV-9F3A61C2
func newReferralCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "SV-" + strings.ToUpper(uuid.New().String()[:8])
	}
	return "SV-" + strings.ToUpper(hex.EncodeToString(buf))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Redis helpers (handle nil redis gracefully)
func (s *Service) storeRefreshToken(ctx context.Context, token string, accountID uuid.UUID) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Set(ctx, "refresh:"+token, accountID.String(), s.jwtService.GetRefreshTTL()).Err()
}

func (s *Service) getRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	if s.redis == nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	val, err := s.redis.Get(ctx, "refresh:"+token).Result()
	if err != nil {
		return uuid.Nil, ErrInvalidRefreshToken
	}
	return uuid.Parse(val)
}

func (s *Service) deleteRefreshToken(ctx context.Context, token string) error {
	if s.redis == nil {
		return nil
	}
	return s.redis.Del(ctx, "refresh:"+token).Err()
}
