package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warta-media/warta/internal/auth"
	"github.com/warta-media/warta/internal/authz"
	"github.com/warta-media/warta/internal/shared"
)

type mockRepository struct {
	users  map[int64]*User
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User), nextID: 1}
}

func (m *mockRepository) seed(role authz.Role) *User {
	user := &User{
		ID:        m.nextID,
		Email:     "user" + string(rune('0'+m.nextID)) + "@warta.id",
		FullName:  "Seeded User",
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.users[user.ID] = user
	m.nextID++
	return user
}

func (m *mockRepository) List(ctx context.Context, limit, offset int) ([]User, int, error) {
	var result []User
	for _, user := range m.users {
		result = append(result, *user)
	}
	return result, len(m.users), nil
}

func (m *mockRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return user, nil
}

func (m *mockRepository) Create(ctx context.Context, params CreateParams) (*User, error) {
	for _, user := range m.users {
		if user.Email == params.Email {
			return nil, shared.ErrDuplicateIdentity
		}
	}
	user := &User{ID: m.nextID, Email: params.Email, FullName: params.FullName, Role: params.Role}
	m.users[user.ID] = user
	m.nextID++
	return user, nil
}

func (m *mockRepository) UpdateProfile(ctx context.Context, id int64, params UpdateProfileParams) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	user.FullName = params.FullName
	user.AvatarURL = params.AvatarURL
	return user, nil
}

func (m *mockRepository) UpdateRole(ctx context.Context, id int64, expected, next authz.Role) (*User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	if user.Role != expected {
		return nil, shared.ErrForbidden
	}
	user.Role = next
	return user, nil
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

type recordingAuditor struct {
	logs []shared.AuditLog
}

func (a *recordingAuditor) Record(ctx context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func actorOf(user *User) shared.Actor {
	return shared.Actor{ID: user.ID, Role: string(user.Role)}
}

func newTestService() (*Service, *mockRepository, *recordingAuditor) {
	repo := newMockRepository()
	audit := &recordingAuditor{}
	return NewService(repo, audit, auth.MinBcryptCost), repo, audit
}

func TestProvisionHonoursHierarchy(t *testing.T) {
	service, repo, _ := newTestService()
	admin := repo.seed(authz.RoleAdmin)

	user, err := service.Provision(context.Background(), actorOf(admin), ProvisionInput{
		Email:    "new.editor@warta.id",
		FullName: "New Editor",
		Password: "correct-horse",
		Role:     "EDITOR",
	})
	require.NoError(t, err)
	assert.Equal(t, authz.RoleEditor, user.Role)

	// An ADMIN may not provision another ADMIN.
	_, err = service.Provision(context.Background(), actorOf(admin), ProvisionInput{
		Email:    "new.admin@warta.id",
		FullName: "New Admin",
		Password: "correct-horse",
		Role:     "ADMIN",
	})
	assert.ErrorIs(t, err, shared.ErrForbiddenRole)
}

func TestProvisionNeverGrantsSuperAdmin(t *testing.T) {
	service, repo, _ := newTestService()
	super := repo.seed(authz.RoleSuperAdmin)

	_, err := service.Provision(context.Background(), actorOf(super), ProvisionInput{
		Email:    "root2@warta.id",
		FullName: "Second Root",
		Password: "correct-horse",
		Role:     "SUPER_ADMIN",
	})
	assert.ErrorIs(t, err, shared.ErrForbiddenRole)
}

func TestUpdateProfileSelfAlwaysAllowed(t *testing.T) {
	service, repo, _ := newTestService()
	user := repo.seed(authz.RoleUser)

	updated, err := service.UpdateProfile(context.Background(), actorOf(user), user.ID, ProfileInput{FullName: "Renamed"})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.FullName)
}

func TestUpdateProfileRequiresManageableTarget(t *testing.T) {
	service, repo, _ := newTestService()
	editor := repo.seed(authz.RoleEditor)
	reporter := repo.seed(authz.RoleReporter)
	admin := repo.seed(authz.RoleAdmin)

	// EDITOR manages REPORTER accounts.
	_, err := service.UpdateProfile(context.Background(), actorOf(editor), reporter.ID, ProfileInput{FullName: "Via Editor"})
	require.NoError(t, err)

	// EDITOR does not manage ADMIN accounts.
	_, err = service.UpdateProfile(context.Background(), actorOf(editor), admin.ID, ProfileInput{FullName: "Nope"})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleOnlySuperAdmin(t *testing.T) {
	service, repo, audit := newTestService()
	super := repo.seed(authz.RoleSuperAdmin)
	admin := repo.seed(authz.RoleAdmin)
	editor := repo.seed(authz.RoleEditor)

	user, err := service.ChangeRole(context.Background(), actorOf(super), editor.ID, "REPORTER")
	require.NoError(t, err)
	assert.Equal(t, authz.RoleReporter, user.Role)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "user.role_change", audit.logs[0].Action)

	_, err = service.ChangeRole(context.Background(), actorOf(admin), editor.ID, "USER")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleProtectsSuperAdminAccount(t *testing.T) {
	service, repo, _ := newTestService()
	super := repo.seed(authz.RoleSuperAdmin)
	other := repo.seed(authz.RoleSuperAdmin)

	// The SUPER_ADMIN account's role is immutable.
	_, err := service.ChangeRole(context.Background(), actorOf(super), other.ID, "ADMIN")
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// No self role change.
	_, err = service.ChangeRole(context.Background(), actorOf(super), super.ID, "ADMIN")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestChangeRoleNeverPromotesToSuperAdmin(t *testing.T) {
	service, repo, _ := newTestService()
	super := repo.seed(authz.RoleSuperAdmin)
	admin := repo.seed(authz.RoleAdmin)

	_, err := service.ChangeRole(context.Background(), actorOf(super), admin.ID, "SUPER_ADMIN")
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestDeletePolicies(t *testing.T) {
	service, repo, audit := newTestService()
	admin := repo.seed(authz.RoleAdmin)
	super := repo.seed(authz.RoleSuperAdmin)
	user := repo.seed(authz.RoleUser)

	// ADMIN deleting SUPER_ADMIN denied regardless of route-level grants.
	err := service.Delete(context.Background(), actorOf(admin), super.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// No self deletion.
	err = service.Delete(context.Background(), actorOf(admin), admin.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	// Ordinary deletion succeeds and is audited.
	err = service.Delete(context.Background(), actorOf(admin), user.ID)
	require.NoError(t, err)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, "user.delete", audit.logs[0].Action)

	_, err = service.Get(context.Background(), user.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteMissingUser(t *testing.T) {
	service, repo, _ := newTestService()
	admin := repo.seed(authz.RoleAdmin)

	err := service.Delete(context.Background(), actorOf(admin), 404)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
