package database

import (
	"path/filepath"
	"testing"

	"coachdesk/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestCreateDefaultAdminIsIdempotent(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "nested", "test.db"), logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.CreateDefaultAdmin("pcc", "secret"))
	require.NoError(t, db.CreateDefaultAdmin("pcc", "other"))

	var admins []models.Admin
	require.NoError(t, db.DB.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "secret", admins[0].Password)
	require.NotNil(t, admins[0].SelectedClass)
	assert.Equal(t, "", *admins[0].SelectedClass)
}

func TestCreateDefaultAdminFillsSelectedClass(t *testing.T) {
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"), logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.DB.Create(&models.Admin{Username: "pcc", Password: "x"}).Error)
	require.NoError(t, db.CreateDefaultAdmin("pcc", "x"))

	var admin models.Admin
	require.NoError(t, db.DB.First(&admin).Error)
	require.NotNil(t, admin.SelectedClass)
	assert.Equal(t, "", *admin.SelectedClass)
}
