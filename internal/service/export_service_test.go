package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/eyesmystery/bookclub-api/internal/model"
	"github.com/eyesmystery/bookclub-api/internal/testutil"
	apperrors "github.com/eyesmystery/bookclub-api/pkg/errors"
)

func TestExportUsers_Workbook(t *testing.T) {
	env := newTestEnv(t)
	svc := NewExportService(env.repo, env.policy, env.logger)
	d1 := testutil.Division(t, env.db, "Readers")
	d2 := testutil.Division(t, env.db, "Thinkers")
	admin := testutil.User(t, env.db, "admin@example.com", model.RoleAdmin, d1.ID)
	member := testutil.User(t, env.db, "bob@example.com", model.RoleUser, d2.ID)
	ctx := context.Background()

	_, _, err := svc.ExportUsers(ctx, actorOf(member))
	assert.True(t, apperrors.Is(err, apperrors.KindForbidden))

	buf, filename, err := svc.ExportUsers(ctx, actorOf(admin))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "members_"))
	assert.True(t, strings.HasSuffix(filename, ".xlsx"))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(rosterSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Email", rows[0][2])
	assert.Equal(t, "admin@example.com", rows[1][2])
	assert.Equal(t, "Thinkers", rows[2][4])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{"Total", "2"}, summary[3])
}
