package repositories

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"grant-desk/domain"
	"grant-desk/errors"
)

func TestApplicationRepository_StoreAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewApplicationRepository(newTestDB(t))

	app := domain.GrantApplication{
		ID:          uuid.New(),
		ApplicantID: "alice",
		Title:       "Community garden",
		Summary:     "Raised beds for the neighborhood",
		Amount:      5000,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	req.NoError(repo.Store(app))

	got, err := repo.Get(app.ID)
	req.NoError(err)
	req.Equal(app.Title, got.Title)
	req.Equal(domain.StatusPending, got.Status)
}

func TestApplicationRepository_GetUnknown(t *testing.T) {
	req := require.New(t)
	repo := NewApplicationRepository(newTestDB(t))

	_, err := repo.Get(uuid.New())
	req.ErrorIs(err, errors.ErrApplicationNotFound)
}

func TestApplicationRepository_ReviewOverwritesSameKey(t *testing.T) {
	req := require.New(t)
	repo := NewApplicationRepository(newTestDB(t))

	app := domain.GrantApplication{
		ID:          uuid.New(),
		ApplicantID: "alice",
		Title:       "Community garden",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	req.NoError(repo.Store(app))

	// When an admin settles the application
	now := time.Now().UTC()
	app.Status = domain.StatusApproved
	app.ReviewedBy = lo.ToPtr("admin-1")
	app.ReviewedAt = &now
	req.NoError(repo.Store(app))

	// Then a single record remains, carrying the review
	all, err := repo.ListAll()
	req.NoError(err)
	req.Len(all, 1)
	req.Equal(domain.StatusApproved, all[0].Status)
	req.Equal("admin-1", *all[0].ReviewedBy)
}

func TestApplicationRepository_ListByApplicant(t *testing.T) {
	req := require.New(t)
	repo := NewApplicationRepository(newTestDB(t))
	now := time.Now().UTC()

	for i, applicant := range []string{"alice", "bob", "alice"} {
		req.NoError(repo.Store(domain.GrantApplication{
			ID:          uuid.New(),
			ApplicantID: applicant,
			Title:       "Project",
			Status:      domain.StatusPending,
			CreatedAt:   now.Add(time.Duration(i) * time.Minute),
		}))
	}

	mine, err := repo.ListByApplicant("alice")
	req.NoError(err)
	req.Len(mine, 2)

	all, err := repo.ListAll()
	req.NoError(err)
	req.Len(all, 3)

	// ListAll is sorted by creation time
	req.True(all[0].CreatedAt.Before(all[1].CreatedAt))
	req.True(all[1].CreatedAt.Before(all[2].CreatedAt))
}
