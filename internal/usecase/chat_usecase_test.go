package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"app/internal/domain/model"
)

type ChtLeadRepoMock struct{ mock.Mock }

func (m *ChtLeadRepoMock) Create(ctx context.Context, lead *model.ChatLead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *ChtLeadRepoMock) FindByID(ctx context.Context, id int64) (model.ChatLead, error) {
	panic("not used in Chat tests")
}

func (m *ChtLeadRepoMock) UpdateEmailSentStatus(ctx context.Context, id int64, status model.EmailSentStatus, sendErr string) error {
	panic("not used in Chat tests")
}

type ChtJobRepoMock struct{ mock.Mock }

func (m *ChtJobRepoMock) Enqueue(ctx context.Context, job *model.EmailJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *ChtJobRepoMock) ListDue(ctx context.Context, now time.Time, limit int) ([]model.EmailJob, error) {
	panic("not used in Chat tests")
}

func (m *ChtJobRepoMock) MarkSent(ctx context.Context, jobID int64) error {
	panic("not used in Chat tests")
}

func (m *ChtJobRepoMock) MarkFailed(ctx context.Context, jobID int64, attempts int, nextAttemptAt time.Time, lastError string) error {
	panic("not used in Chat tests")
}

func (m *ChtJobRepoMock) MarkDead(ctx context.Context, jobID int64, lastError string) error {
	panic("not used in Chat tests")
}

func TestChat_CreateLead_InvalidEmail(t *testing.T) {
	uc := NewChatUsecase(new(ChtLeadRepoMock), new(ChtJobRepoMock), &fixedClock{t: time.Now()})

	_, err := uc.CreateLead(context.Background(), ChatLeadInput{Email: "bad", Message: "hi"})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestChat_CreateLead_EmptyMessage(t *testing.T) {
	uc := NewChatUsecase(new(ChtLeadRepoMock), new(ChtJobRepoMock), &fixedClock{t: time.Now()})

	_, err := uc.CreateLead(context.Background(), ChatLeadInput{Email: "tanaka@example.com", Message: "  "})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

func TestChat_CreateLead_EnqueuesThanksMail(t *testing.T) {
	leads := new(ChtLeadRepoMock)
	jobs := new(ChtJobRepoMock)
	clock := &fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	uc := NewChatUsecase(leads, jobs, clock)

	leads.On("Create", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*model.ChatLead).ID = 3
	}).Return(nil)

	jobs.On("Enqueue", mock.Anything, mock.MatchedBy(func(job *model.EmailJob) bool {
		return job.Kind == model.EmailJobKindChatThanks &&
			job.ChatLeadID != nil && *job.ChatLeadID == 3 &&
			job.Recipient == "tanaka@example.com" &&
			job.Status == model.EmailJobStatusQueued &&
			job.NextAttemptAt.Equal(clock.t)
	})).Return(nil)

	out, err := uc.CreateLead(context.Background(), ChatLeadInput{
		Name:    "田中",
		Email:   "Tanaka@Example.com",
		Message: "資料が欲しいです",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.LeadID)

	jobs.AssertExpectations(t)
}
