package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/shopkeeperpro/shopkeeper/internal/user"
)

func TestService_Register(t *testing.T) {
	type testCase struct {
		name      string
		params    user.RegisterParams
		setupMock func(m *user.MockRepository)
		wantErr   bool
		wantRole  user.Role
	}

	tests := []testCase{
		{
			name: "Success",
			params: user.RegisterParams{
				Username: "asha",
				Password: "secret123",
				FullName: "Asha Patel",
				Role:     user.RoleAdmin,
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "asha").Return(nil, user.ErrNotFound)
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u *user.User) error {
						assert.NotEmpty(t, u.ID)
						assert.True(t, u.Active)
						assert.NoError(t, bcrypt.CompareHashAndPassword(
							[]byte(u.PasswordHash), []byte("secret123")))
						return nil
					})
			},
			wantRole: user.RoleAdmin,
		},
		{
			name: "DefaultsToUserRole",
			params: user.RegisterParams{
				Username: "ravi",
				Password: "secret123",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "ravi").Return(nil, user.ErrNotFound)
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantRole: user.RoleUser,
		},
		{
			name: "UsernameTaken",
			params: user.RegisterParams{
				Username: "asha",
				Password: "secret123",
			},
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "asha").Return(&user.User{ID: "u1"}, nil)
			},
			wantErr: true,
		},
		{
			name:    "ShortPassword",
			params:  user.RegisterParams{Username: "asha", Password: "abc"},
			wantErr: true,
		},
		{
			name:    "EmptyUsername",
			params:  user.RegisterParams{Password: "secret123"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := user.NewService(repo)
			got, err := svc.Register(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRole, got.Role)
		})
	}
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	active := &user.User{
		ID:           "u1",
		Username:     "asha",
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    time.Now(),
	}

	inactive := &user.User{
		ID:           "u2",
		Username:     "ravi",
		PasswordHash: string(hash),
		Active:       false,
	}

	type testCase struct {
		name      string
		username  string
		password  string
		setupMock func(m *user.MockRepository)
		wantErr   error
	}

	tests := []testCase{
		{
			name:     "Success",
			username: "asha",
			password: "secret123",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "asha").Return(active, nil)
			},
		},
		{
			name:     "WrongPassword",
			username: "asha",
			password: "nope",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "asha").Return(active, nil)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "UnknownUser",
			username: "ghost",
			password: "secret123",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, user.ErrNotFound)
			},
			wantErr: user.ErrInvalidCredentials,
		},
		{
			name:     "DeactivatedAccount",
			username: "ravi",
			password: "secret123",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetByUsername(gomock.Any(), "ravi").Return(inactive, nil)
			},
			wantErr: user.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := user.NewService(repo)
			got, err := svc.Authenticate(context.Background(), tt.username, tt.password)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.username, got.Username)
		})
	}
}
