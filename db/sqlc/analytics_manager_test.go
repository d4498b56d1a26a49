package sqlc

import (
	"context"
	"net"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/sqlc-dev/pqtype"
)

func TestAnalyticsCounters(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ipNet := net.IPNet{IP: net.ParseIP("10.0.0.7"), Mask: net.CIDRMask(32, 32)}
	am := NewAnalyticsManager(New(db), ipNet)
	inet := pqtype.Inet{IPNet: ipNet, Valid: true}
	ctx := context.Background()

	if got := am.ServerIp(); !got.Valid || !got.IPNet.IP.Equal(ipNet.IP) {
		t.Fatalf("expected server ip: %s\t got: %+v", ipNet.IP, got)
	}

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, matches_created\)`).
		WithArgs(inet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := am.IncrementMatchesCreatedCount(ctx); err != nil {
		t.Fatal(err)
	}

	mock.ExpectExec(`INSERT INTO game_server_analytics \(server_ip, matches_finished\)`).
		WithArgs(inet).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := am.IncrementMatchesFinishedCount(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		query    string
		column   string
		get      func(context.Context) (int64, error)
		expected int64
	}{
		{
			name:     "matches created",
			query:    `SELECT matches_created FROM game_server_analytics WHERE server_ip = \$1`,
			column:   "matches_created",
			get:      am.GetMatchesCreatedCount,
			expected: 1,
		},
		{
			name:     "matches finished",
			query:    `SELECT matches_finished FROM game_server_analytics WHERE server_ip = \$1`,
			column:   "matches_finished",
			get:      am.GetMatchesFinishedCount,
			expected: 1,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			mock.ExpectQuery(test.query).
				WithArgs(inet).
				WillReturnRows(sqlmock.NewRows([]string{test.column}).AddRow(test.expected))

			got, err := test.get(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if got != test.expected {
				t.Fatalf("expected count: %d\t got: %d", test.expected, got)
			}
		})
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
