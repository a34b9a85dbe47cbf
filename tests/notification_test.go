package tests

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"olympiadAPI/internal/notification"
	"olympiadAPI/services"
	"olympiadAPI/tests/helpers"
)

// TestNotificationLifecycle creates a notification, waits for the
// dispatcher to process it, then walks the read flow.
func TestNotificationLifecycle(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()
	notificationService.SetPushProvider(&services.MockPushProvider{})

	clerkID := "user_notif_" + time.Now().Format("20060102150405")
	u := helpers.CreateTestUser(t, pool, clerkID)

	ctx := context.Background()

	err := notificationService.RegisterDevice(ctx, clerkID, notification.RegisterDeviceRequest{
		Token:    "test-device-token",
		Platform: "android",
	})
	require.NoError(t, err)

	notif, err := notificationService.CreateNotification(ctx, u.ID,
		notification.TypePuzzleCompleted,
		"Puzzle complete!",
		"You collected every piece.",
		map[string]any{"profileId": "test"},
	)
	require.NoError(t, err)
	assert.Equal(t, notification.StatusPending, notif.Status)

	// Give the worker pool a moment to push and mark it sent.
	time.Sleep(500 * time.Millisecond)

	count, err := notificationService.GetUnreadCount(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	list, err := notificationService.GetNotifications(ctx, clerkID, 1, 20, false)
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, notification.StatusSent, list.Notifications[0].Status)

	err = notificationService.MarkAsRead(ctx, notif.ID, clerkID)
	require.NoError(t, err)

	count, err = notificationService.GetUnreadCount(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// TestMarkAllAsRead covers the bulk read path.
func TestMarkAllAsRead(t *testing.T) {
	pool := helpers.SetupTestDB(t)
	defer helpers.CleanupTestDB(t, pool)

	notificationService := services.NewNotificationService(pool)
	defer notificationService.Stop()

	clerkID := "user_notif_all_" + time.Now().Format("20060102150405")
	u := helpers.CreateTestUser(t, pool, clerkID)

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := notificationService.CreateNotification(ctx, u.ID,
			notification.TypeSubmissionReviewed,
			"Submission reviewed",
			"Your slogan was approved.",
			nil,
		)
		require.NoError(t, err)
	}

	err := notificationService.MarkAllAsRead(ctx, clerkID)
	require.NoError(t, err)

	count, err := notificationService.GetUnreadCount(ctx, clerkID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
