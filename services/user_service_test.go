package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hiking-backend/utils"
)

var testSecret = []byte("test-secret")

func Test_RegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	svc := NewUserService(db, testSecret, time.Hour)

	user, err := svc.Register(ctx, RegisterInput{Username: "hiker", Email: "hiker@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEqual(t, "correct-horse", user.Password)
	assert.False(t, user.IsStaff)

	_, err = svc.Register(ctx, RegisterInput{Username: "hiker", Password: "another-password"})
	assert.True(t, utils.IsKind(err, utils.KindValidation), "duplicate username: %v", err)

	res, err := svc.Login(ctx, "hiker", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "hiker", res.User.Username)

	claims, err := utils.ParseJWT(testSecret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.False(t, claims.IsStaff)

	_, err = svc.Login(ctx, "hiker", "wrong-password")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
	_, err = svc.Login(ctx, "nobody", "correct-horse")
	assert.True(t, utils.IsKind(err, utils.KindUnauthorized))
}

func Test_RegisterValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db, testSecret, time.Hour)

	_, err := svc.Register(context.Background(), RegisterInput{Username: "", Password: "short"})
	require.True(t, utils.IsKind(err, utils.KindValidation))

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	details, ok := appErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "username")
	assert.Contains(t, details, "password")

	_, err = svc.Register(context.Background(), RegisterInput{Username: "x", Email: "not-an-email", Password: "long-enough"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}
