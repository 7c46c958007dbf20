package services

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"grant-desk/domain"
	"grant-desk/errors"
	"grant-desk/repositories"
)

var validate = validator.New()

type IApplicationService interface {
	Submit(applicantID string, req SubmitRequest) (domain.GrantApplication, error)
	Review(reviewerID string, id uuid.UUID, approve bool) (domain.GrantApplication, error)
	Get(requester domain.Participant, id uuid.UUID) (domain.GrantApplication, error)
	List(requester domain.Participant) ([]domain.GrantApplication, error)
}

// SubmitRequest carries the applicant's input for a new application.
// Amount is in whole currency units.
type SubmitRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=200"`
	Summary string `json:"summary" validate:"required,max=4000"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
}

type ApplicationService struct {
	applications repositories.IApplicationRepository
}

func NewApplicationService(repo repositories.IApplicationRepository) IApplicationService {
	return &ApplicationService{applications: repo}
}

// Submit records a new application in pending state.
func (s *ApplicationService) Submit(applicantID string, req SubmitRequest) (domain.GrantApplication, error) {
	if err := validate.Struct(req); err != nil {
		return domain.GrantApplication{}, fmt.Errorf("invalid application: %w", err)
	}

	app := domain.GrantApplication{
		ID:          uuid.New(),
		ApplicantID: applicantID,
		Title:       req.Title,
		Summary:     req.Summary,
		Amount:      req.Amount,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.applications.Store(app); err != nil {
		return domain.GrantApplication{}, err
	}
	return app, nil
}

// Review settles a pending application. A settled application cannot be
// reviewed again.
func (s *ApplicationService) Review(reviewerID string, id uuid.UUID, approve bool) (domain.GrantApplication, error) {
	app, err := s.applications.Get(id)
	if err != nil {
		return domain.GrantApplication{}, err
	}

	if app.Status != domain.StatusPending {
		return domain.GrantApplication{}, errors.ErrAlreadyReviewed
	}

	app.Status = lo.Ternary(approve, domain.StatusApproved, domain.StatusRejected)
	app.ReviewedBy = &reviewerID
	app.ReviewedAt = lo.ToPtr(time.Now().UTC())

	if err := s.applications.Store(app); err != nil {
		return domain.GrantApplication{}, err
	}
	return app, nil
}

// Get returns one application. Applicants can only read their own.
func (s *ApplicationService) Get(requester domain.Participant, id uuid.UUID) (domain.GrantApplication, error) {
	app, err := s.applications.Get(id)
	if err != nil {
		return domain.GrantApplication{}, err
	}
	if !requester.IsAdmin() && app.ApplicantID != requester.ID {
		return domain.GrantApplication{}, errors.ErrNotApplicant
	}
	return app, nil
}

// List returns every application for admins, own applications otherwise.
func (s *ApplicationService) List(requester domain.Participant) ([]domain.GrantApplication, error) {
	if requester.IsAdmin() {
		return s.applications.ListAll()
	}
	return s.applications.ListByApplicant(requester.ID)
}
