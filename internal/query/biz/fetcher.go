package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/usrsp-rag/internal/model"
	"github.com/kart-io/usrsp-rag/internal/query/store"
	logctx "github.com/kart-io/usrsp-rag/pkg/infra/logger"
)

// Fetcher 负责查询与客户相关的邀请记录和家庭关联记录。
type Fetcher struct {
	store store.RecordStore
}

// NewFetcher 创建记录查询器。两类记录共用同一个 store。
func NewFetcher(records store.RecordStore) *Fetcher {
	return &Fetcher{store: records}
}

// FetchInvitations 返回客户作为邀请人或被邀请人的全部邀请记录。
func (f *Fetcher) FetchInvitations(ctx context.Context, customerID string) ([]model.InvitationRecord, error) {
	records, err := f.store.FindInvitations(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("fetch invitation records: %w", err)
	}
	logctx.GetLogger(ctx).Debugw("invitation records fetched", "count", len(records))
	return records, nil
}

// FetchFamilyLinks 返回任一成员条目包含该客户的家庭关联记录。
func (f *Fetcher) FetchFamilyLinks(ctx context.Context, customerID string) ([]model.FamilyLinkingRecord, error) {
	records, err := f.store.FindFamilyLinks(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("fetch family linking records: %w", err)
	}
	logctx.GetLogger(ctx).Debugw("family linking records fetched", "count", len(records))
	return records, nil
}
