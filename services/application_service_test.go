package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"grant-desk/domain"
	"grant-desk/errors"
	"grant-desk/mocks"
)

func TestApplicationService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIApplicationRepository(ctrl)
	svc := NewApplicationService(mockRepo)

	t.Run("should store a pending application", func(t *testing.T) {
		req := require.New(t)

		var stored domain.GrantApplication
		mockRepo.EXPECT().
			Store(gomock.Any()).
			DoAndReturn(func(app domain.GrantApplication) error {
				stored = app
				return nil
			}).
			Times(1)

		app, err := svc.Submit("u1", SubmitRequest{
			Title:   "Community garden",
			Summary: "Planting beds for the neighborhood",
			Amount:  5000,
		})

		req.NoError(err)
		req.Equal(domain.StatusPending, app.Status)
		req.Equal("u1", app.ApplicantID)
		req.Nil(app.ReviewedBy)
		req.Equal(stored.ID, app.ID)
	})

	t.Run("should reject invalid input without touching the repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Store(gomock.Any()).Times(0)

		_, err := svc.Submit("u1", SubmitRequest{Title: "x", Amount: -1})
		req.Error(err)
	})
}

func TestApplicationService_Review(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIApplicationRepository(ctrl)
	svc := NewApplicationService(mockRepo)

	pending := domain.GrantApplication{
		ID:          uuid.New(),
		ApplicantID: "u1",
		Title:       "Community garden",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	t.Run("should approve a pending application", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Get(pending.ID).Return(pending, nil).Times(1)
		mockRepo.EXPECT().Store(gomock.Any()).Return(nil).Times(1)

		app, err := svc.Review("a1", pending.ID, true)

		req.NoError(err)
		req.Equal(domain.StatusApproved, app.Status)
		req.NotNil(app.ReviewedBy)
		req.Equal("a1", *app.ReviewedBy)
		req.NotNil(app.ReviewedAt)
	})

	t.Run("should reject a pending application", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().Get(pending.ID).Return(pending, nil).Times(1)
		mockRepo.EXPECT().Store(gomock.Any()).Return(nil).Times(1)

		app, err := svc.Review("a1", pending.ID, false)

		req.NoError(err)
		req.Equal(domain.StatusRejected, app.Status)
	})

	t.Run("should refuse to settle twice", func(t *testing.T) {
		req := require.New(t)

		settled := pending
		settled.Status = domain.StatusApproved

		mockRepo.EXPECT().Get(settled.ID).Return(settled, nil).Times(1)
		mockRepo.EXPECT().Store(gomock.Any()).Times(0)

		_, err := svc.Review("a1", settled.ID, false)

		req.ErrorIs(err, errors.ErrAlreadyReviewed)
	})

	t.Run("should propagate not found", func(t *testing.T) {
		req := require.New(t)
		unknown := uuid.New()

		mockRepo.EXPECT().Get(unknown).Return(domain.GrantApplication{}, errors.ErrApplicationNotFound).Times(1)

		_, err := svc.Review("a1", unknown, true)

		req.ErrorIs(err, errors.ErrApplicationNotFound)
	})
}

func TestApplicationService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIApplicationRepository(ctrl)
	svc := NewApplicationService(mockRepo)

	app := domain.GrantApplication{ID: uuid.New(), ApplicantID: "u1", Status: domain.StatusPending}

	t.Run("applicant reads own application", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().Get(app.ID).Return(app, nil).Times(1)

		got, err := svc.Get(domain.Participant{ID: "u1", Role: domain.RoleUser}, app.ID)
		req.NoError(err)
		req.Equal(app.ID, got.ID)
	})

	t.Run("applicant cannot read another's application", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().Get(app.ID).Return(app, nil).Times(1)

		_, err := svc.Get(domain.Participant{ID: "u2", Role: domain.RoleUser}, app.ID)
		req.ErrorIs(err, errors.ErrNotApplicant)
	})

	t.Run("admin reads any application", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().Get(app.ID).Return(app, nil).Times(1)

		_, err := svc.Get(domain.Participant{ID: "a1", Role: domain.RoleAdmin}, app.ID)
		req.NoError(err)
	})
}

func TestApplicationService_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIApplicationRepository(ctrl)
	svc := NewApplicationService(mockRepo)

	t.Run("admin lists everything", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().ListAll().Return([]domain.GrantApplication{{}, {}}, nil).Times(1)

		apps, err := svc.List(domain.Participant{ID: "a1", Role: domain.RoleAdmin})
		req.NoError(err)
		req.Len(apps, 2)
	})

	t.Run("applicant lists own applications only", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().ListByApplicant("u1").Return([]domain.GrantApplication{{}}, nil).Times(1)

		apps, err := svc.List(domain.Participant{ID: "u1", Role: domain.RoleUser})
		req.NoError(err)
		req.Len(apps, 1)
	})
}
