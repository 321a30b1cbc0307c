package service

import (
	"context"
	"errors"
	"testing"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
	"workstack/backend/internal/platform/rbac"
	"workstack/backend/internal/server/middleware"
	userdomain "workstack/backend/internal/user/domain"
)

// fakeOrgRepo implements OrgRepo in memory. CreateWithOwner writes the org
// and the owner membership into the shared membership fake, mirroring the
// single-transaction contract.
type fakeOrgRepo struct {
	orgs        map[string]*domain.Organization
	memberships *fakeMembershipRepo
	createErr   error
}

func newFakeOrgRepo(memberships *fakeMembershipRepo) *fakeOrgRepo {
	return &fakeOrgRepo{orgs: make(map[string]*domain.Organization), memberships: memberships}
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	return f.orgs[id], nil
}

func (f *fakeOrgRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Organization, error) {
	var out []*domain.Organization
	for _, m := range f.memberships.byKey {
		if m.UserID == userID {
			if o := f.orgs[m.OrganizationID]; o != nil {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) CreateWithOwner(ctx context.Context, o *domain.Organization, owner *membershipdomain.Membership) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.orgs[o.ID] = o
	return f.memberships.Create(ctx, owner)
}

func (f *fakeOrgRepo) Update(ctx context.Context, o *domain.Organization) error {
	f.orgs[o.ID] = o
	return nil
}

func (f *fakeOrgRepo) DeleteCascade(ctx context.Context, id string) (bool, error) {
	if _, ok := f.orgs[id]; !ok {
		return false, nil
	}
	delete(f.orgs, id)
	for k, m := range f.memberships.byKey {
		if m.OrganizationID == id {
			delete(f.memberships.byKey, k)
		}
	}
	return true, nil
}

// fakeMembershipRepo implements MembershipRepo and rbac.OrgMembershipGetter
// in memory, keyed by userID:orgID.
type fakeMembershipRepo struct {
	byKey     map[string]*membershipdomain.Membership
	createErr error
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{byKey: make(map[string]*membershipdomain.Membership)}
}

func (f *fakeMembershipRepo) GetByUserAndOrg(ctx context.Context, userID, orgID string) (*membershipdomain.Membership, error) {
	return f.byKey[userID+":"+orgID], nil
}

func (f *fakeMembershipRepo) ListByOrg(ctx context.Context, orgID string) ([]*membershipdomain.Membership, error) {
	var out []*membershipdomain.Membership
	for _, m := range f.byKey {
		if m.OrganizationID == orgID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) Create(ctx context.Context, m *membershipdomain.Membership) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.byKey[m.UserID+":"+m.OrganizationID] = m
	return nil
}

func (f *fakeMembershipRepo) DeleteByUserAndOrg(ctx context.Context, userID, orgID string) (bool, error) {
	key := userID + ":" + orgID
	if _, ok := f.byKey[key]; !ok {
		return false, nil
	}
	delete(f.byKey, key)
	return true, nil
}

func (f *fakeMembershipRepo) UpdateRole(ctx context.Context, userID, orgID string, role membershipdomain.Role) (*membershipdomain.Membership, error) {
	m := f.byKey[userID+":"+orgID]
	if m == nil {
		return nil, nil
	}
	m.Role = role
	return m, nil
}

// fakeUserRepo implements UserRepo in memory.
type fakeUserRepo struct {
	byID map[string]*userdomain.User
}

func newFakeUserRepo(ids ...string) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*userdomain.User)}
	for _, id := range ids {
		f.byID[id] = &userdomain.User{ID: id, Email: id + "@example.com", Name: id}
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return f.byID[id], nil
}

func authedCtx(userID string) context.Context {
	return middleware.WithIdentity(context.Background(), &userdomain.User{ID: userID}, "session-1")
}

type orgFixture struct {
	svc         *OrgService
	orgs        *fakeOrgRepo
	memberships *fakeMembershipRepo
	users       *fakeUserRepo
}

func newOrgFixture(userIDs ...string) *orgFixture {
	memberships := newFakeMembershipRepo()
	orgs := newFakeOrgRepo(memberships)
	users := newFakeUserRepo(userIDs...)
	return &orgFixture{
		svc:         NewOrgService(orgs, memberships, users),
		orgs:        orgs,
		memberships: memberships,
		users:       users,
	}
}

func TestCreate_CallerBecomesOwner(t *testing.T) {
	fx := newOrgFixture("user-1")

	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "acme.test", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	m := fx.memberships.byKey["user-1:"+org.ID]
	if m == nil {
		t.Fatal("owner membership not created")
	}
	if m.Role != membershipdomain.RoleOwner {
		t.Errorf("role = %q, want %q", m.Role, membershipdomain.RoleOwner)
	}
	if org.Settings == nil || org.Settings.DefaultTimezone != "UTC" {
		t.Error("nil settings must default")
	}
}

func TestCreate_FailureLeavesNoMembership(t *testing.T) {
	fx := newOrgFixture("user-1")
	fx.orgs.createErr = errors.New("db down")

	_, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(fx.memberships.byKey) != 0 {
		t.Error("failed creation must not leave a membership behind")
	}
}

func TestCreate_Unauthenticated(t *testing.T) {
	fx := newOrgFixture()

	_, err := fx.svc.Create(context.Background(), "Acme", "", nil)
	if !errors.Is(err, rbac.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
}

func TestGet_NonMemberForbidden(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = fx.svc.Get(authedCtx("user-2"), org.ID)
	if !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestAddMember_Idempotent(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	first, created, err := fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleMember)
	if err != nil {
		t.Fatalf("AddMember: %v", err)
	}
	if !created {
		t.Error("first add must report created")
	}
	// Repeating the call with a different role must change nothing.
	second, created, err := fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("second AddMember: %v", err)
	}
	if created {
		t.Error("repeat add must not report created")
	}
	if second.ID != first.ID {
		t.Errorf("membership id = %q, want %q", second.ID, first.ID)
	}
	if second.Role != membershipdomain.RoleMember {
		t.Errorf("role = %q, want unchanged %q", second.Role, membershipdomain.RoleMember)
	}
}

func TestAddMember_UnknownUser(t *testing.T) {
	fx := newOrgFixture("user-1")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = fx.svc.AddMember(authedCtx("user-1"), org.ID, "ghost", membershipdomain.RoleMember)
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestAddMember_OwnerRoleRejected(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, _, err = fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleOwner)
	if !errors.Is(err, ErrCannotAssignOwner) {
		t.Fatalf("err = %v, want ErrCannotAssignOwner", err)
	}
}

func TestAddMember_RequiresAdmin(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2", "user-3")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	_, _, err = fx.svc.AddMember(authedCtx("user-2"), org.ID, "user-3", membershipdomain.RoleMember)
	if !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRemoveMember_OwnerProtected(t *testing.T) {
	fx := newOrgFixture("user-1")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = fx.svc.RemoveMember(authedCtx("user-1"), org.ID, "user-1")
	if !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("err = %v, want ErrCannotRemoveOwner", err)
	}
}

func TestRemoveMember_NotFound(t *testing.T) {
	fx := newOrgFixture("user-1")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	err = fx.svc.RemoveMember(authedCtx("user-1"), org.ID, "user-9")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("err = %v, want ErrMemberNotFound", err)
	}
}

func TestUpdateMemberRole(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleMember); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	m, err := fx.svc.UpdateMemberRole(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleAdmin)
	if err != nil {
		t.Fatalf("UpdateMemberRole: %v", err)
	}
	if m.Role != membershipdomain.RoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, membershipdomain.RoleAdmin)
	}

	if _, err := fx.svc.UpdateMemberRole(authedCtx("user-1"), org.ID, "user-1", membershipdomain.RoleMember); !errors.Is(err, ErrCannotRemoveOwner) {
		t.Fatalf("demoting owner: err = %v, want ErrCannotRemoveOwner", err)
	}
}

func TestDelete_OwnerOnly(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	org, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, _, err := fx.svc.AddMember(authedCtx("user-1"), org.ID, "user-2", membershipdomain.RoleAdmin); err != nil {
		t.Fatalf("AddMember: %v", err)
	}

	if err := fx.svc.Delete(authedCtx("user-2"), org.ID); !errors.Is(err, rbac.ErrForbidden) {
		t.Fatalf("admin delete: err = %v, want ErrForbidden", err)
	}
	if err := fx.svc.Delete(authedCtx("user-1"), org.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(fx.orgs.orgs) != 0 {
		t.Error("organization not deleted")
	}
	if len(fx.memberships.byKey) != 0 {
		t.Error("memberships must be deleted with the organization")
	}
}

func TestListMine(t *testing.T) {
	fx := newOrgFixture("user-1", "user-2")
	if _, err := fx.svc.Create(authedCtx("user-1"), "Acme", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := fx.svc.Create(authedCtx("user-2"), "Globex", "", nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	orgs, err := fx.svc.ListMine(authedCtx("user-1"))
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Name != "Acme" {
		t.Errorf("orgs = %v, want only Acme", orgs)
	}
}
