package catalog_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketbill/internal/core/apperror"
	"marketbill/internal/domain"
)

type testRow struct {
	ID     string `db:"id"`
	Code   string `db:"code"`
	Active bool   `db:"active"`
}

func newTestRepo() *BaseCatalogRepo[*testRow] {
	return NewBaseCatalogRepo(nil, "test_table", "test", []string{"id", "code", "active"}, func() *testRow { return &testRow{} }).
		WithSearch("code")
}

func TestListQuery(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "defaults",
			filter:  domain.ListFilter{},
			wantSQL: "SELECT id, code, active FROM test_table ORDER BY id ASC",
		},
		{
			name: "equals, active, search and paging",
			filter: domain.ListFilter{
				Search:     "ab",
				Equals:     map[string]any{"code": "X"},
				OnlyActive: true,
				OrderBy:    "-code",
				Limit:      10,
				Offset:     20,
			},
			wantSQL:  "SELECT id, code, active FROM test_table WHERE code = $1 AND active = $2 AND (code ILIKE $3) ORDER BY code DESC LIMIT 10 OFFSET 20",
			wantArgs: []any{"X", true, "%ab%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.listQuery(tt.filter)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.wantSQL, sql)
			if len(tt.wantArgs) == 0 {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestListQuery_RejectsUnknownColumns(t *testing.T) {
	repo := newTestRepo()

	_, err := repo.listQuery(domain.ListFilter{Equals: map[string]any{"password": "x"}})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)

	_, err = repo.listQuery(domain.ListFilter{OrderBy: "-secret"})
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo().WithDefaultOrder("code ASC")

	order, err := repo.parseOrderBy("")
	require.NoError(t, err)
	assert.Equal(t, "code ASC", order)

	order, err = repo.parseOrderBy("+active")
	require.NoError(t, err)
	assert.Equal(t, "active ASC", order)
}
