package identity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms/backend/internal/domain/shared"
)

func createTestUser(t *testing.T) *User {
	t.Helper()
	user, err := NewUser("warehouse.op1", "Passw0rd123", RoleUser)
	require.NoError(t, err)
	return user
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with hashed password", func(t *testing.T) {
		user := createTestUser(t)

		assert.Equal(t, "warehouse.op1", user.Username)
		assert.Equal(t, RoleUser, user.Role)
		assert.True(t, user.Active)
		assert.NotEqual(t, "Passw0rd123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Passw0rd123"))
		assert.Len(t, user.GetDomainEvents(), 1)
	})

	t.Run("lowercases username", func(t *testing.T) {
		user, err := NewUser("QCLead", "Passw0rd123", RoleQC)
		require.NoError(t, err)
		assert.Equal(t, "qclead", user.Username)
	})

	t.Run("rejects short username", func(t *testing.T) {
		_, err := NewUser("ab", "Passw0rd123", RoleUser)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least 3 characters")
	})

	t.Run("rejects password without digits", func(t *testing.T) {
		_, err := NewUser("operator", "PasswordOnly", RoleUser)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "at least one letter and one number")
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := NewUser("operator", "Passw0rd123", Role("superuser"))
		assert.Error(t, err)
	})
}

func TestUser_ChangePassword(t *testing.T) {
	t.Run("changes with correct current password", func(t *testing.T) {
		user := createTestUser(t)
		err := user.ChangePassword("Passw0rd123", "NewPassw0rd9")
		assert.NoError(t, err)
		assert.True(t, user.VerifyPassword("NewPassw0rd9"))
		assert.False(t, user.VerifyPassword("Passw0rd123"))
	})

	t.Run("rejects wrong current password", func(t *testing.T) {
		user := createTestUser(t)
		err := user.ChangePassword("wrong", "NewPassw0rd9")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Current password is incorrect")
	})
}

func TestUser_ActivateDeactivate(t *testing.T) {
	user := createTestUser(t)

	require.NoError(t, user.Deactivate())
	assert.False(t, user.Active)
	assert.False(t, user.CanLogin())

	err := user.Deactivate()
	assert.Error(t, err)

	require.NoError(t, user.Activate())
	assert.True(t, user.CanLogin())
}

func TestUser_LoginLockout(t *testing.T) {
	user := createTestUser(t)

	locked := user.RecordLoginFailure(3, time.Minute)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Minute)
	assert.False(t, locked)
	locked = user.RecordLoginFailure(3, time.Minute)
	assert.True(t, locked)
	assert.True(t, user.IsLocked())
	assert.False(t, user.CanLogin())

	user.RecordLoginSuccess()
	assert.False(t, user.IsLocked())
	assert.Equal(t, 0, user.FailedAttempts)
	assert.NotNil(t, user.LastLoginAt)
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, RoleAdmin.HasPermission(PermissionUserManage))
	assert.True(t, RoleManager.HasPermission(PermissionDocumentApprove))
	assert.True(t, RoleQC.HasPermission(PermissionDocumentApprove))
	assert.False(t, RoleQC.HasPermission(PermissionJobManage))
	assert.False(t, RoleUser.HasPermission(PermissionDocumentApprove))

	assert.True(t, RoleAdmin.CanSeeAllDocuments())
	assert.True(t, RoleManager.CanSeeAllDocuments())
	assert.False(t, RoleQC.CanSeeAllDocuments())
	assert.False(t, RoleUser.CanSeeAllDocuments())
	assert.True(t, RoleQC.ReviewsSubmittedDocuments())
	assert.False(t, RoleManager.ReviewsSubmittedDocuments())
}

func TestActor_QCVisibility(t *testing.T) {
	owner := uuid.New()
	qc := Actor{ID: uuid.New(), Name: "inspector", Role: RoleQC}

	// Own documents in any state
	own := Actor{ID: owner, Name: "picker", Role: RoleQC}
	assert.True(t, own.CanSee(owner, "draft"))

	// Other users' documents only once submitted for review
	assert.False(t, qc.CanSee(owner, "draft"))
	assert.True(t, qc.CanSee(owner, "submitted"))
	assert.False(t, qc.CanSee(owner, "qc_approved"))

	plain := Actor{ID: uuid.New(), Name: "worker", Role: RoleUser}
	assert.False(t, plain.CanSee(owner, "submitted"))

	manager := Actor{ID: uuid.New(), Name: "boss", Role: RoleManager}
	assert.True(t, manager.CanSee(owner, "draft"))
}

func TestActor_ScopeFilter(t *testing.T) {
	userID := uuid.New()

	filter := shared.DefaultFilter()
	Actor{ID: userID, Role: RoleUser}.ScopeFilter(&filter)
	assert.Equal(t, userID, filter.Filters["created_by"])

	filter = shared.DefaultFilter()
	Actor{ID: userID, Role: RoleQC}.ScopeFilter(&filter)
	assert.Equal(t, userID, filter.Filters["reviewer_id"])
	assert.NotContains(t, filter.Filters, "created_by")

	filter = shared.DefaultFilter()
	Actor{ID: userID, Role: RoleManager}.ScopeFilter(&filter)
	assert.Empty(t, filter.Filters)
}
