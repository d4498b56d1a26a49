package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

const analyticsGetMatchesCreatedCount = `SELECT matches_created FROM game_server_analytics WHERE server_ip = $1`

func (q *Queries) AnalyticsGetMatchesCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetMatchesCreatedCount, serverIp)
	var matches_created int64
	err := row.Scan(&matches_created)
	return matches_created, err
}

const analyticsGetMatchesFinishedCount = `SELECT matches_finished FROM game_server_analytics WHERE server_ip = $1`

func (q *Queries) AnalyticsGetMatchesFinishedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetMatchesFinishedCount, serverIp)
	var matches_finished int64
	err := row.Scan(&matches_finished)
	return matches_finished, err
}

const analyticsIncrementMatchesCreatedCount = `INSERT INTO game_server_analytics (server_ip, matches_created) VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE SET matches_created = game_server_analytics.matches_created + 1`

func (q *Queries) AnalyticsIncrementMatchesCreatedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementMatchesCreatedCount, serverIp)
	return err
}

const analyticsIncrementMatchesFinishedCount = `INSERT INTO game_server_analytics (server_ip, matches_finished) VALUES ($1, 1)
ON CONFLICT (server_ip) DO UPDATE SET matches_finished = game_server_analytics.matches_finished + 1`

func (q *Queries) AnalyticsIncrementMatchesFinishedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementMatchesFinishedCount, serverIp)
	return err
}
