package expense_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/shopkeeperpro/shopkeeper/internal/expense"
	"github.com/shopkeeperpro/shopkeeper/internal/syncstatus"
)

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    expense.CreateParams
		setupMock func(m *expense.MockRepository)
		wantErr   bool
	}

	tests := []testCase{
		{
			name: "Success",
			params: expense.CreateParams{
				UserID:      "user-1",
				Category:    expense.CategoryRent,
				Description: "Shop rent for September",
				Amount:      5000,
			},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, e *expense.Expense) error {
						assert.NotEmpty(t, e.ID)
						assert.Equal(t, syncstatus.Pending, e.SyncStatus)
						return nil
					})
			},
		},
		{
			name: "UnknownCategory",
			params: expense.CreateParams{
				UserID:   "user-1",
				Category: "groceries",
				Amount:   100,
			},
			wantErr: true,
		},
		{
			name: "ZeroAmount",
			params: expense.CreateParams{
				UserID:   "user-1",
				Category: expense.CategoryBills,
				Amount:   0,
			},
			wantErr: true,
		},
		{
			name: "RepoError",
			params: expense.CreateParams{
				UserID:   "user-1",
				Category: expense.CategoryOther,
				Amount:   50,
			},
			setupMock: func(m *expense.MockRepository) {
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := expense.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := expense.NewService(repo)
			got, err := svc.Create(context.Background(), tt.params)

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.params.Category, got.Category)
			assert.InDelta(t, tt.params.Amount, got.Amount, 0.001)
		})
	}
}

func TestService_Update_RejectsInvalidCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := expense.NewMockRepository(ctrl)
	svc := expense.NewService(repo)

	err := svc.Update(context.Background(), &expense.Expense{
		ID:       "exp-1",
		Category: "nonsense",
		Amount:   100,
	})
	assert.Error(t, err)
}

func TestService_DeleteAll(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := expense.NewMockRepository(ctrl)
	repo.EXPECT().DeleteAll(gomock.Any()).Return(nil)

	svc := expense.NewService(repo)
	require.NoError(t, svc.DeleteAll(context.Background()))
}
