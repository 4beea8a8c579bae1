package db

import (
	"testing"
	"testing/fstest"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gormDB
}

func TestSplitStatements(t *testing.T) {
	statements := splitStatements(`
-- counties
CREATE TABLE a (
	id TEXT PRIMARY KEY
);

CREATE INDEX idx_a ON a (id);
INSERT INTO a (id) VALUES ('x')
`)

	require.Len(t, statements, 3)
	assert.Contains(t, statements[0], "CREATE TABLE a")
	assert.NotContains(t, statements[0], ";")
	assert.Equal(t, "CREATE INDEX idx_a ON a (id)", statements[1])
	assert.Equal(t, "INSERT INTO a (id) VALUES ('x')", statements[2])
}

func TestMigrateFSAppliesOnce(t *testing.T) {
	gormDB := openMemory(t)
	fsys := fstest.MapFS{
		"0001_first.sql":  {Data: []byte("CREATE TABLE first (id TEXT PRIMARY KEY);\n")},
		"0002_second.sql": {Data: []byte("CREATE TABLE second (id TEXT PRIMARY KEY);\nINSERT INTO second (id) VALUES ('a');\n")},
		"README.md":       {Data: []byte("not a migration")},
	}

	require.NoError(t, MigrateFS(gormDB, fsys))
	require.NoError(t, MigrateFS(gormDB, fsys))

	applied, err := AppliedMigrations(gormDB)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_first.sql", "0002_second.sql"}, applied)

	var count int64
	require.NoError(t, gormDB.Raw("SELECT COUNT(1) FROM second").Scan(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMigrateFSRollsBackFailedFile(t *testing.T) {
	gormDB := openMemory(t)
	fsys := fstest.MapFS{
		"0001_broken.sql": {Data: []byte("CREATE TABLE ok (id TEXT);\nNOT VALID SQL;\n")},
	}

	require.Error(t, MigrateFS(gormDB, fsys))

	applied, err := AppliedMigrations(gormDB)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestAutoMigrateCreatesTables(t *testing.T) {
	gormDB := openMemory(t)
	require.NoError(t, AutoMigrate(gormDB))

	for _, table := range []string{"users", "counties", "permit_packages", "package_documents", "checklist_items", "package_checklist_progress"} {
		assert.True(t, gormDB.Migrator().HasTable(table), table)
	}
	assert.True(t, gormDB.Migrator().HasIndex("package_checklist_progress", "idx_progress_package_item"))
}
