package service

import (
	"context"
	"errors"
	"testing"

	"dealerdesk/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestRegister_Success(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetByUsername", mock.Anything, "dealer1").Return(nil, gorm.ErrRecordNotFound)
	repo.On("GetByEmail", mock.Anything, "dealer1@example.com").Return(nil, gorm.ErrRecordNotFound)

	var created *model.User
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.User) }).
		Return(nil)

	resp, err := svc.Register(context.Background(), RegisterRequest{
		Username: "dealer1",
		Email:    "dealer1@example.com",
		Password: "secret123",
		FullName: "Dealer One",
	})

	require.NoError(t, err)
	assert.Equal(t, "dealer1", resp.Username)
	assert.Equal(t, "dealer1@example.com", resp.Email)

	require.NotNil(t, created)
	assert.NotEqual(t, "secret123", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret123")))
}

func TestRegister_DuplicateUsername(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetByUsername", mock.Anything, "dealer1").Return(&model.User{Username: "dealer1"}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "dealer1",
		Email:    "dealer1@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.Equal(t, "username already exists", err.Error())
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetByUsername", mock.Anything, "dealer1").Return(nil, gorm.ErrRecordNotFound)
	repo.On("GetByEmail", mock.Anything, "dealer1@example.com").Return(&model.User{Email: "dealer1@example.com"}, nil)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "dealer1",
		Email:    "dealer1@example.com",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.Equal(t, "email already exists", err.Error())
}

func TestRegister_InvalidEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	_, err := svc.Register(context.Background(), RegisterRequest{
		Username: "dealer1",
		Email:    "not-an-email",
		Password: "secret123",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid email format", err.Error())
}

func TestLogin_Success(t *testing.T) {
	t.Setenv("JWT_SECRET", "test_secret")

	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	userID := uuid.New()
	repo.On("GetByEmail", mock.Anything, "dealer1@example.com").Return(&model.User{
		ID:       userID,
		Username: "dealer1",
		Email:    "dealer1@example.com",
		Password: string(hashed),
	}, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "dealer1@example.com",
		Password: "secret123",
	})

	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)

	parsed, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test_secret"), nil
	})
	require.NoError(t, err)
	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, userID.String(), claims["sub"])
	assert.Equal(t, "dealer1", claims["username"])
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.On("GetByEmail", mock.Anything, "dealer1@example.com").Return(&model.User{
		Email:    "dealer1@example.com",
		Password: string(hashed),
	}, nil)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "dealer1@example.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "ghost@example.com",
		Password: "whatever",
	})

	require.Error(t, err)
	assert.Equal(t, "invalid email or password", err.Error())
}

func TestGetUserByID_NotFound(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("GetByID", mock.Anything, "missing-id").Return(nil, errors.New("record not found"))

	_, err := svc.GetUserByID(context.Background(), "missing-id")

	assert.ErrorIs(t, err, ErrUserNotFound)
}
