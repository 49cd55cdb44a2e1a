package worker

import (
	"context"
	"log"
	"time"

	"app/internal/domain/model"
	"app/internal/mailer"
	"app/internal/repository"
)

const (
	defaultPollInterval = 30 * time.Second
	defaultBatchSize    = 20

	//この回数失敗したらDEADにして二度と拾わない
	maxAttempts = 5
	backoffBase = time.Minute
	backoffMax  = time.Hour
)

// email_jobsを回すワーカー。
// ジョブはDB常駐なので、プロセスが落ちても積んだメールは消えない。
type EmailWorker struct {
	jobs     repository.EmailJobRepository
	leads    repository.ChatLeadRepository
	mail     mailer.Mailer
	interval time.Duration
	batch    int
	now      func() time.Time
}

// DI
func NewEmailWorker(
	jobs repository.EmailJobRepository,
	leads repository.ChatLeadRepository,
	mail mailer.Mailer,
) *EmailWorker {
	return &EmailWorker{
		jobs:     jobs,
		leads:    leads,
		mail:     mail,
		interval: defaultPollInterval,
		batch:    defaultBatchSize,
		now:      time.Now,
	}
}

// ctxが閉じるまでポーリングし続ける。goroutineで動かす。
func (w *EmailWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		w.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// 期限が来たジョブを1バッチ処理する。
func (w *EmailWorker) runOnce(ctx context.Context) {
	jobs, err := w.jobs.ListDue(ctx, w.now(), w.batch)
	if err != nil {
		log.Printf("email worker: list due failed: %v", err)
		return
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.process(ctx, job)
	}
}

func (w *EmailWorker) process(ctx context.Context, job model.EmailJob) {
	//リード側が既にSENTなら送らない（別経路で送信済みの再確認）
	if job.ChatLeadID != nil {
		lead, err := w.leads.FindByID(ctx, *job.ChatLeadID)
		if err == nil && lead.EmailSentStatus == model.EmailSentStatusSent {
			if err := w.jobs.MarkSent(ctx, job.ID); err != nil {
				log.Printf("email worker: mark sent failed: job=%d err=%v", job.ID, err)
			}
			return
		}
	}

	if err := w.mail.Send(job.Recipient, job.Subject, job.Body); err != nil {
		w.fail(ctx, job, err)
		return
	}

	if err := w.jobs.MarkSent(ctx, job.ID); err != nil {
		log.Printf("email worker: mark sent failed: job=%d err=%v", job.ID, err)
	}
	if job.ChatLeadID != nil {
		if err := w.leads.UpdateEmailSentStatus(ctx, *job.ChatLeadID, model.EmailSentStatusSent, ""); err != nil {
			log.Printf("email worker: update lead failed: lead=%d err=%v", *job.ChatLeadID, err)
		}
	}
}

func (w *EmailWorker) fail(ctx context.Context, job model.EmailJob, sendErr error) {
	attempts := job.Attempts + 1

	if attempts >= maxAttempts {
		log.Printf("email worker: job dead after %d attempts: job=%d err=%v", attempts, job.ID, sendErr)
		if err := w.jobs.MarkDead(ctx, job.ID, sendErr.Error()); err != nil {
			log.Printf("email worker: mark dead failed: job=%d err=%v", job.ID, err)
		}
		if job.ChatLeadID != nil {
			_ = w.leads.UpdateEmailSentStatus(ctx, *job.ChatLeadID, model.EmailSentStatusFailed, sendErr.Error())
		}
		return
	}

	next := w.now().Add(backoff(attempts))
	if err := w.jobs.MarkFailed(ctx, job.ID, attempts, next, sendErr.Error()); err != nil {
		log.Printf("email worker: mark failed failed: job=%d err=%v", job.ID, err)
	}
	if job.ChatLeadID != nil {
		_ = w.leads.UpdateEmailSentStatus(ctx, *job.ChatLeadID, model.EmailSentStatusFailed, sendErr.Error())
	}
}

// 1分, 2分, 4分, ... 上限1時間。
func backoff(attempts int) time.Duration {
	d := backoffBase
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= backoffMax {
			return backoffMax
		}
	}
	return d
}
