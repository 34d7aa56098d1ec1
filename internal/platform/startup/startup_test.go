package startup

import (
	"testing"

	"github.com/go2motion/contest-backend/internal/platform/database"
	"github.com/go2motion/contest-backend/internal/platform/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeApplication(t *testing.T) {
	testutil.SetupDB(t)

	require.NoError(t, InitializeApplication())
	require.NoError(t, InitializeApplication(), "migrations are repeatable")

	for _, table := range []string{
		"users", "leagues", "payments", "videos", "video_categories", "votes",
		"jury_members", "jury_votes", "awards", "forum_topics", "forum_replies", "metadata",
	} {
		assert.True(t, database.DB.Migrator().HasTable(table), table)
	}
}
