package usecase

import (
	"context"
	"net/http"
	"strings"

	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/repository"
)

// チャット問い合わせの受付。
// お礼メールはここで送らず、ジョブとして積むだけ（送信はワーカー）。
type ChatUsecase struct {
	leads repository.ChatLeadRepository
	jobs  repository.EmailJobRepository
	clock Clock
}

// DI
func NewChatUsecase(
	leads repository.ChatLeadRepository,
	jobs repository.EmailJobRepository,
	clock Clock,
) *ChatUsecase {
	return &ChatUsecase{
		leads: leads,
		jobs:  jobs,
		clock: clock,
	}
}

type ChatLeadInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ChatLeadOutput struct {
	LeadID int64 `json:"lead_id"`
}

// リードを保存してお礼メールのジョブを積む。
func (u *ChatUsecase) CreateLead(ctx context.Context, in ChatLeadInput) (ChatLeadOutput, error) {
	if !looksLikeEmail(in.Email) {
		return ChatLeadOutput{}, NewHTTPError(http.StatusBadRequest, "email is invalid")
	}
	if strings.TrimSpace(in.Message) == "" {
		return ChatLeadOutput{}, NewHTTPError(http.StatusBadRequest, "message is required")
	}

	lead := &model.ChatLead{
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		Message:         in.Message,
		EmailSentStatus: model.EmailSentStatusPending,
	}
	if err := u.leads.Create(ctx, lead); err != nil {
		return ChatLeadOutput{}, err
	}

	subject, body := mailer.BuildChatThanks(lead.Name)

	job := &model.EmailJob{
		Kind:          model.EmailJobKindChatThanks,
		ChatLeadID:    &lead.ID,
		Recipient:     lead.Email,
		Subject:       subject,
		Body:          body,
		Status:        model.EmailJobStatusQueued,
		NextAttemptAt: u.clock.Now(),
	}
	if err := u.jobs.Enqueue(ctx, job); err != nil {
		return ChatLeadOutput{}, err
	}

	return ChatLeadOutput{LeadID: lead.ID}, nil
}
