package users

import (
	"context"
	"testing"

	"agroshare-backend/internal/models"
	"agroshare-backend/internal/pkg/apperr"
	"agroshare-backend/internal/pkg/constants"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUsersTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Notification{}))
	return &Service{DB: db}, db
}

func TestUpsertProfile(t *testing.T) {
	svc, db := setupUsersTest(t)
	userID := uuid.New()

	user, err := svc.UpsertProfile(context.Background(), UpsertProfileInput{
		UserID:    userID,
		FirstName: "Pat",
		Email:     "pat@example.com",
		Role:      constants.RoleFarmer,
		FarmName:  "Green Acres",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleFarmer, user.Role)

	// Second save updates in place.
	user, err = svc.UpsertProfile(context.Background(), UpsertProfileInput{
		UserID:    userID,
		FirstName: "Pat",
		Email:     "pat@example.com",
		Role:      constants.RoleFarmer,
		Bio:       "Third-generation dairy farm",
	})
	require.NoError(t, err)
	assert.Equal(t, "Third-generation dairy farm", user.Bio)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertProfile_Validation(t *testing.T) {
	svc, _ := setupUsersTest(t)

	_, err := svc.UpsertProfile(context.Background(), UpsertProfileInput{UserID: uuid.New()})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))

	_, err = svc.UpsertProfile(context.Background(), UpsertProfileInput{
		UserID: uuid.New(), Email: "x@example.com", Role: "wizard",
	})
	assert.True(t, apperr.IsCode(err, apperr.CodeInvalidInput))
}

func TestNotificationFeed(t *testing.T) {
	svc, db := setupUsersTest(t)
	userID := uuid.New()
	otherID := uuid.New()

	require.NoError(t, db.Create(&models.Notification{
		UserID: &userID, Role: constants.RoleInvestor, Type: models.NotifyRequestApproved,
	}).Error)
	require.NoError(t, db.Create(&models.Notification{
		UserID: &otherID, Role: constants.RoleInvestor, Type: models.NotifyRequestRejected,
	}).Error)

	feed, err := svc.ListNotifications(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, models.NotifyRequestApproved, feed[0].Type)

	// Only the owner can mark it read; doing it twice is a no-op.
	_, err = svc.MarkNotificationRead(context.Background(), otherID, feed[0].NotificationID)
	assert.True(t, apperr.IsCode(err, apperr.CodeForbidden))

	read, err := svc.MarkNotificationRead(context.Background(), userID, feed[0].NotificationID)
	require.NoError(t, err)
	require.NotNil(t, read.ReadAt)
	stamp := *read.ReadAt

	read, err = svc.MarkNotificationRead(context.Background(), userID, feed[0].NotificationID)
	require.NoError(t, err)
	assert.Equal(t, stamp.Unix(), read.ReadAt.Unix())
}
