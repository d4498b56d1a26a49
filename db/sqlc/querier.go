package sqlc

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

type Querier interface {
	AnalyticsGetMatchesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetMatchesFinishedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsIncrementMatchesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementMatchesFinishedCount(ctx context.Context, serverIp pqtype.Inet) error
	GetMatchSnapshot(ctx context.Context, id string) (json.RawMessage, error)
	InsertMatch(ctx context.Context, arg InsertMatchParams) (int64, error)
	ListStaleMatchIDs(ctx context.Context, createdAt time.Time) ([]string, error)
	UpsertMatch(ctx context.Context, arg UpsertMatchParams) error
}

var _ Querier = (*Queries)(nil)
