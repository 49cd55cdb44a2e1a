package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type AccessLinkRepository interface {
	//tokenで挿入。既存なら期限を延長してused_atをクリアする。
	//既存行のorder_idは捨てない。
	UpsertByToken(ctx context.Context, link model.UserAccessLink) error
	FindByToken(ctx context.Context, token string) (model.UserAccessLink, error)
	MarkUsed(ctx context.Context, linkID int64, usedAt time.Time) error
}
