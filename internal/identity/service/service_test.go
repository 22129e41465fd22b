package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"janseva/internal/identity"
	"janseva/internal/jwttoken"
	domain "janseva/pkg/domain"
	dErrors "janseva/pkg/domain-errors"
)

type IdentityServiceSuite struct {
	suite.Suite
	svc *Service
	ctx context.Context
}

func (s *IdentityServiceSuite) SetupTest() {
	tokens := jwttoken.NewJWTService("test-key", "janseva", "janseva-portal")
	s.svc = NewService(identity.NewInMemoryStore(), tokens, nil, time.Hour, "bootstrap-secret")
	s.ctx = context.Background()
}

func TestIdentityServiceSuite(t *testing.T) {
	suite.Run(t, new(IdentityServiceSuite))
}

func (s *IdentityServiceSuite) TestRegisterAndLogin() {
	s.Run("register opens a session with the requested role", func() {
		session, err := s.svc.Register(s.ctx, "Citizen Sharma", "citizen@email.com", "s3cret-pass", "Citizen", "")
		s.Require().NoError(err)
		s.Equal(domain.RoleCitizen, session.Identity.Role)
		s.NotEmpty(session.AccessToken)
	})

	s.Run("login succeeds with the registered credentials", func() {
		session, err := s.svc.Login(s.ctx, "Citizen@Email.com", "s3cret-pass")
		s.Require().NoError(err)
		s.Equal("Citizen Sharma", session.Identity.DisplayName)
	})

	s.Run("login fails with the wrong password", func() {
		_, err := s.svc.Login(s.ctx, "citizen@email.com", "wrong")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})

	s.Run("login fails for unknown accounts with the same error", func() {
		_, err := s.svc.Login(s.ctx, "nobody@email.com", "s3cret-pass")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeUnauthorized))
	})
}

func (s *IdentityServiceSuite) TestRegisterValidation() {
	s.Run("rejects unsupported roles", func() {
		_, err := s.svc.Register(s.ctx, "X", "x@email.com", "s3cret-pass", "SuperAdmin", "")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("rejects duplicate emails", func() {
		_, err := s.svc.Register(s.ctx, "A", "dup@email.com", "s3cret-pass", "Citizen", "")
		s.Require().NoError(err)
		_, err = s.svc.Register(s.ctx, "B", "dup@email.com", "s3cret-pass", "Citizen", "")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeConflict))
	})

	s.Run("rejects empty password", func() {
		_, err := s.svc.Register(s.ctx, "X", "pw@email.com", "", "Citizen", "")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *IdentityServiceSuite) TestAdminRegistrationGated() {
	s.Run("rejected without the bootstrap token", func() {
		_, err := s.svc.Register(s.ctx, "A", "admin1@gov.in", "s3cret-pass", "Admin", "")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("rejected with the wrong token", func() {
		_, err := s.svc.Register(s.ctx, "A", "admin1@gov.in", "s3cret-pass", "Admin", "guess")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})

	s.Run("accepted with the configured token", func() {
		session, err := s.svc.Register(s.ctx, "A", "admin1@gov.in", "s3cret-pass", "Admin", "bootstrap-secret")
		s.Require().NoError(err)
		s.Equal(domain.RoleAdmin, session.Identity.Role)
	})

	s.Run("disabled entirely when no token is configured", func() {
		tokens := jwttoken.NewJWTService("test-key", "janseva", "janseva-portal")
		ungated := NewService(identity.NewInMemoryStore(), tokens, nil, time.Hour, "")
		_, err := ungated.Register(s.ctx, "A", "admin2@gov.in", "s3cret-pass", "Admin", "")
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeForbidden))
	})
}

func (s *IdentityServiceSuite) TestWhoami() {
	session, err := s.svc.Register(s.ctx, "Officer Kumar", "officer@gov.in", "s3cret-pass", "Officer", "")
	s.Require().NoError(err)

	actor, err := s.svc.Whoami(s.ctx, session.Identity.ID)
	s.Require().NoError(err)
	s.Equal(session.Identity, actor)
}
