package actors

import (
	"context"
	"testing"
	"time"

	"groove-press/internal/models"
	"groove-press/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// askActor sends a message and waits for the reply, failing the test on
// transport errors. Application errors still come back as the result.
func askActor(t *testing.T, system *actor.ActorSystem, pid *actor.PID, msg interface{}) interface{} {
	t.Helper()
	future := system.Root.RequestFuture(pid, msg, 5*time.Second)
	result, err := future.Result()
	require.NoError(t, err)
	return result
}

// requireAppError asserts the result is an AppError with the given code.
func requireAppError(t *testing.T, result interface{}, code string) *utils.AppError {
	t.Helper()
	appErr, ok := result.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", result)
	require.Equal(t, code, appErr.Code)
	return appErr
}

func seedUser(t *testing.T, db *memStore, username string, role models.Role, banned bool) *models.User {
	t.Helper()
	user := &models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		Role:      role,
		IsBanned:  banned,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.SaveUser(context.Background(), user))
	return user
}
