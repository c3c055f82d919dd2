package config_test

import (
	"testing"

	"libraryhub/internal/adapters/persistence/models"
	"libraryhub/internal/config"
	"libraryhub/internal/pkg/password"
	"libraryhub/internal/testutil/dbtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_Run(t *testing.T) {
	password.Cost = bcrypt.MinCost
	t.Cleanup(func() { password.Cost = password.DefaultCost })

	db := dbtest.Open(t)
	seeder := config.NewSeeder(db, config.SeedConfig{
		AdminUsername: "root",
		AdminPassword: "supersecret",
		AdminEmail:    "root@example.edu",
		AdminSchool:   "north-high",
	})

	require.NoError(t, seeder.Run(true))
	// second run must not duplicate anything
	require.NoError(t, seeder.Run(true))

	var admins []models.User
	require.NoError(t, db.Where("school_name = ?", "north-high").Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "ADMIN", admins[0].Role)
	assert.True(t, password.Verify("supersecret", admins[0].Password))

	var books []models.Book
	require.NoError(t, db.Where("school_name = ?", "north-high").Find(&books).Error)
	assert.Len(t, books, 5)
	for _, b := range books {
		assert.Equal(t, b.Quantity, b.AvailableQuantity)
		assert.Equal(t, "available", b.Status)
	}

	var students, teachers int64
	db.Model(&models.Student{}).Count(&students)
	db.Model(&models.Teacher{}).Count(&teachers)
	assert.Equal(t, int64(3), students)
	assert.Equal(t, int64(2), teachers)
}

func TestSeeder_NoPassword(t *testing.T) {
	db := dbtest.Open(t)
	require.NoError(t, config.NewSeeder(db, config.SeedConfig{AdminUsername: "root", AdminSchool: "s"}).Run(false))

	var count int64
	db.Model(&models.User{}).Count(&count)
	assert.Zero(t, count)
}
