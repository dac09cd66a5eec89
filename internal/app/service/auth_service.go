package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ikkim/eduverify-backend/internal/app/model"
	"github.com/ikkim/eduverify-backend/internal/app/repository"
	"github.com/ikkim/eduverify-backend/pkg/logger"
	"github.com/ikkim/eduverify-backend/pkg/util"
)

const (
	DemoCompanyID = "company-1"
	demoPassword  = "demo123"
)

type demoAccount struct {
	password string
	user     model.User
}

var demoAccounts = map[string]demoAccount{
	"employer@demo": {
		password: demoPassword,
		user: model.User{
			ID:        "user-1",
			CompanyID: DemoCompanyID,
			Name:      "Demo Employer",
			Email:     "employer@demo",
			Role:      model.RoleEmployer,
		},
	},
	"verifier@demo": {
		password: demoPassword,
		user: model.User{
			ID:        "user-2",
			CompanyID: DemoCompanyID,
			Name:      "Demo Verifier",
			Email:     "verifier@demo",
			Role:      model.RoleVerifier,
		},
	},
}

// DemoCompany returns the company both demo accounts belong to
func DemoCompany() model.Company {
	return model.Company{
		ID:            DemoCompanyID,
		CompanyName:   "Demo Tech Solutions",
		Email:         "employer@demo",
		Website:       "https://demo.com",
		ContactNumber: "+919876543210",
		Address:       "123 Demo Street, Mumbai, Maharashtra, 400001",
		SLADays:       model.DefaultSLADays,
	}
}

func isDemoEmail(email string) bool {
	_, ok := demoAccounts[strings.ToLower(email)]
	return ok
}

type SignupInput struct {
	CompanyName           string `json:"companyName" validate:"required,min=2"`
	Email                 string `json:"email" validate:"required,email"`
	Password              string `json:"password" validate:"required,min=6"`
	Website               string `json:"website" validate:"omitempty,url"`
	CompanyCertificateURL string `json:"companyCertificateUrl"`
	ContactNumber         string `json:"contactNumber" validate:"required,phone"`
	Address               string `json:"address" validate:"required,min=10"`
}

type AuthResult struct {
	Token   string         `json:"token"`
	Role    model.UserRole `json:"role"`
	UserID  string         `json:"userId"`
	User    model.User     `json:"user"`
	Company model.Company  `json:"company"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Signup(ctx context.Context, input SignupInput) (*model.Company, error)
	Me(ctx context.Context, token string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	IsAuthenticated(ctx context.Context, token string) bool
	SeedDemoCompany(ctx context.Context) error
}

type authService struct {
	companyRepo repository.CompanyRepository
	sessionRepo repository.SessionRepository
	jwtSecret   string
	tokenExpiry time.Duration
	latency     Latency
}

func NewAuthService(
	companyRepo repository.CompanyRepository,
	sessionRepo repository.SessionRepository,
	jwtSecret string,
	tokenExpiry time.Duration,
	latency Latency,
) AuthService {
	return &authService{
		companyRepo: companyRepo,
		sessionRepo: sessionRepo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		latency:     latency,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if err := wait(ctx, s.latency.Login); err != nil {
		return nil, err
	}

	if account, ok := demoAccounts[strings.ToLower(email)]; ok && util.EqualSecret(account.password, password) {
		company, err := s.companySnapshot(ctx, DemoCompany())
		if err != nil {
			return nil, err
		}
		return s.startSession(ctx, account.user, company)
	}

	stored, err := s.companyRepo.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		logger.Error("Failed to look up company for login", err, map[string]interface{}{
			"email": email,
		})
		return nil, err
	}
	if stored == nil || !util.VerifyPassword(stored.PasswordHash, password) {
		logger.Warn("Login failed: invalid credentials", map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	user := model.User{
		ID:        "user-" + stored.ID,
		CompanyID: stored.ID,
		Name:      stored.CompanyName,
		Email:     stored.Email,
		Role:      model.RoleEmployer,
	}
	return s.startSession(ctx, user, stored.Company)
}

func (s *authService) startSession(ctx context.Context, user model.User, company model.Company) (*AuthResult, error) {
	sessionID := uuid.NewString()

	// tokens are stamped with wall time so expiry checks stay meaningful
	token, err := util.GenerateToken(util.TokenSubject{
		SessionID: sessionID,
		UserID:    user.ID,
		CompanyID: company.ID,
		Email:     user.Email,
		Role:      string(user.Role),
	}, s.jwtSecret, s.tokenExpiry, time.Now())
	if err != nil {
		logger.Error("Failed to generate token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	if err := s.sessionRepo.Save(ctx, sessionID, &model.Session{User: user, Company: company}); err != nil {
		logger.Error("Failed to persist session", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, err
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id":    user.ID,
		"company_id": company.ID,
		"role":       user.Role,
	})

	return &AuthResult{
		Token:   token,
		Role:    user.Role,
		UserID:  user.ID,
		User:    user,
		Company: company,
	}, nil
}

// companySnapshot prefers the persisted copy so settings changes are visible
func (s *authService) companySnapshot(ctx context.Context, fallback model.Company) (model.Company, error) {
	stored, err := s.companyRepo.FindByID(ctx, fallback.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return fallback, nil
	}
	if err != nil {
		return model.Company{}, err
	}
	return stored.Company, nil
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*model.Company, error) {
	logger.Info("Attempting company signup", map[string]interface{}{
		"email":        input.Email,
		"company_name": input.CompanyName,
	})

	if err := wait(ctx, s.latency.Signup); err != nil {
		return nil, err
	}

	input.Email = strings.TrimSpace(input.Email)
	if err := validateInput(input); err != nil {
		return nil, err
	}

	if isDemoEmail(input.Email) {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": input.Email,
		})
		return nil, err
	}

	account := &model.CompanyAccount{
		Company: model.Company{
			ID:                    util.NewID("company"),
			CompanyName:           input.CompanyName,
			Email:                 input.Email,
			Website:               input.Website,
			CompanyCertificateURL: input.CompanyCertificateURL,
			ContactNumber:         input.ContactNumber,
			Address:               input.Address,
			SLADays:               model.DefaultSLADays,
		},
		PasswordHash: hash,
	}

	if err := s.companyRepo.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			logger.Warn("Signup failed: email already registered", map[string]interface{}{
				"email": input.Email,
			})
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("Company registered successfully", map[string]interface{}{
		"company_id": account.ID,
		"email":      account.Email,
	})

	company := account.Company
	return &company, nil
}

// Me resolves a token to its session. The company snapshot is refreshed from
// storage when the company has been persisted.
func (s *authService) Me(ctx context.Context, token string) (*model.Session, error) {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		return nil, ErrNotAuthenticated
	}

	session, err := s.sessionRepo.Find(ctx, claims.SessionID())
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	company, err := s.companySnapshot(ctx, session.Company)
	if err != nil {
		return nil, err
	}
	session.Company = company
	return session, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := util.ValidateToken(token, s.jwtSecret)
	if err != nil {
		// nothing to revoke
		return nil
	}

	if err := s.sessionRepo.Delete(ctx, claims.SessionID()); err != nil {
		logger.Error("Failed to delete session", err, map[string]interface{}{
			"user_id": claims.UserID,
		})
		return err
	}

	logger.Info("User logged out", map[string]interface{}{
		"user_id": claims.UserID,
	})
	return nil
}

func (s *authService) IsAuthenticated(ctx context.Context, token string) bool {
	_, err := s.Me(ctx, token)
	return err == nil
}

// SeedDemoCompany persists the demo company once so it behaves like any other
func (s *authService) SeedDemoCompany(ctx context.Context) error {
	_, err := s.companyRepo.FindByID(ctx, DemoCompanyID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	if err := s.companyRepo.Save(ctx, &model.CompanyAccount{Company: DemoCompany()}); err != nil {
		logger.Error("Failed to seed demo company", err)
		return err
	}
	logger.Info("Demo company seeded", map[string]interface{}{
		"company_id": DemoCompanyID,
	})
	return nil
}
