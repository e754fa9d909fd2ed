package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/frahmantamala/vaccination-registry/internal"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

const testSecret = "test-secret-with-at-least-32-characters"

// Mock UserRepository for testing
type mockUserRepository struct {
	users         map[string]*rbacDatamodel.User
	returnError   bool
	errorToReturn error
}

func newMockUserRepository() *mockUserRepository {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("correct_password"), bcrypt.MinCost)

	return &mockUserRepository{
		users: map[string]*rbacDatamodel.User{
			"enfermera": {ID: 1, EmpresaID: 1, Username: "enfermera", PasswordHash: string(hashedPassword), IsActive: true},
			"auditor":   {ID: 2, EmpresaID: 1, Username: "auditor", PasswordHash: string(hashedPassword), IsActive: true},
			"retirado":  {ID: 3, EmpresaID: 1, Username: "retirado", PasswordHash: string(hashedPassword), IsActive: false},
		},
	}
}

func (m *mockUserRepository) GetUserByUsername(_ context.Context, username string) (*rbacDatamodel.User, error) {
	if m.returnError {
		return nil, m.errorToReturn
	}
	return m.users[username], nil
}

func (m *mockUserRepository) setError(err error) {
	m.returnError = true
	m.errorToReturn = err
}

var _ = ginkgo.Describe("AuthService", func() {
	var (
		ctx      context.Context
		service  *Service
		mockRepo *mockUserRepository
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		ctx = context.Background()
		mockRepo = newMockUserRepository()
		tokenGen = NewJWTTokenGenerator(testSecret, "vaccination-registry", 15*time.Minute, 24*time.Hour)
		lg := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = NewService(mockRepo, tokenGen, bcrypt.MinCost, lg)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.Context("when credentials are valid", func() {
			ginkgo.It("should return access and refresh tokens", func() {
				// Given
				dto := LoginDTO{Username: "enfermera", Password: "correct_password"}

				// When
				tokens, err := service.Authenticate(ctx, dto)

				// Then
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.RefreshToken).ToNot(gomega.BeEmpty())
				gomega.Expect(tokens.AccessToken).ToNot(gomega.Equal(tokens.RefreshToken))
				gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
			})

			ginkgo.It("should put the username in the token subject", func() {
				// When
				tokens, err := service.Authenticate(ctx, LoginDTO{Username: "auditor", Password: "correct_password"})
				gomega.Expect(err).ToNot(gomega.HaveOccurred())

				// Then
				claims, err := service.ValidateAccessToken(tokens.AccessToken)
				gomega.Expect(err).ToNot(gomega.HaveOccurred())
				gomega.Expect(claims.Username()).To(gomega.Equal("auditor"))
				gomega.Expect(claims.Issuer).To(gomega.Equal("vaccination-registry"))
			})
		})

		ginkgo.Context("when credentials are invalid", func() {
			ginkgo.It("should reject an unknown username", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Username: "ghost", Password: "correct_password"})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
				gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject a wrong password", func() {
				tokens, err := service.Authenticate(ctx, LoginDTO{Username: "enfermera", Password: "wrong_password"})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
				gomega.Expect(tokens.RefreshToken).To(gomega.BeEmpty())
			})

			ginkgo.It("should reject an inactive user with the right password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Username: "retirado", Password: "correct_password"})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
			})

			ginkgo.It("should not reveal that an inactive user exists on a wrong password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Username: "retirado", Password: "nope"})

				gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidCredentials))
			})
		})

		ginkgo.Context("when input validation fails", func() {
			ginkgo.It("should require a username", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Password: "password"})

				gomega.Expect(internal.IsType(err, internal.ErrorTypeValidation)).To(gomega.BeTrue())
				gomega.Expect(err.Error()).To(gomega.ContainSubstring("username is required"))
			})

			ginkgo.It("should require a password", func() {
				_, err := service.Authenticate(ctx, LoginDTO{Username: "enfermera"})

				gomega.Expect(err.Error()).To(gomega.ContainSubstring("password is required"))
			})
		})

		ginkgo.Context("when repository returns error", func() {
			ginkgo.It("should report the store as unavailable", func() {
				mockRepo.setError(errors.New("database error"))

				_, err := service.Authenticate(ctx, LoginDTO{Username: "enfermera", Password: "correct_password"})

				gomega.Expect(internal.IsType(err, internal.ErrorTypeDependency)).To(gomega.BeTrue())
			})
		})
	})

	ginkgo.Describe("RefreshTokens", func() {
		var refreshToken string

		ginkgo.BeforeEach(func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "enfermera", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			refreshToken = tokens.RefreshToken
		})

		ginkgo.It("should issue a new pair for the same user", func() {
			tokens, err := service.RefreshTokens(ctx, refreshToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(claims.Username()).To(gomega.Equal("enfermera"))
		})

		ginkgo.It("should refuse an access token", func() {
			tokens, err := service.Authenticate(ctx, LoginDTO{Username: "enfermera", Password: "correct_password"})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.RefreshTokens(ctx, tokens.AccessToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should refuse once the user was deactivated", func() {
			mockRepo.users["enfermera"].IsActive = false

			_, err := service.RefreshTokens(ctx, refreshToken)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrUserInactive))
		})

		ginkgo.It("should return error for malformed token", func() {
			tokens, err := service.RefreshTokens(ctx, "invalid.token.format")

			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
			gomega.Expect(tokens.AccessToken).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should report expired tokens", func() {
			expiredGen := NewJWTTokenGenerator(testSecret, "vaccination-registry", -time.Hour, time.Hour)
			token, _, err := expiredGen.GenerateAccessToken("enfermera")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrTokenExpired))
		})

		ginkgo.It("should reject tokens signed with another secret", func() {
			otherGen := NewJWTTokenGenerator("another-secret-with-at-least-32-chars", "vaccination-registry", time.Hour, time.Hour)
			token, _, err := otherGen.GenerateAccessToken("enfermera")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject tokens from another issuer", func() {
			otherGen := NewJWTTokenGenerator(testSecret, "someone-else", time.Hour, time.Hour)
			token, _, err := otherGen.GenerateAccessToken("enfermera")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.MatchError(internal.ErrInvalidToken))
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a bcrypt hash of the password", func() {
			hash, err := service.HashPassword("s3cret")
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(gomega.Succeed())
		})
	})
})
