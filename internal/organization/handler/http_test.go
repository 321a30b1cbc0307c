package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	membershipdomain "workstack/backend/internal/membership/domain"
	"workstack/backend/internal/organization/domain"
	"workstack/backend/internal/organization/service"
	"workstack/backend/internal/server/middleware"
	userdomain "workstack/backend/internal/user/domain"
)

// fakeMembershipRepo keys memberships by "userID:orgID".
type fakeMembershipRepo struct {
	byKey map[string]*membershipdomain.Membership
}

func newFakeMembershipRepo() *fakeMembershipRepo {
	return &fakeMembershipRepo{byKey: make(map[string]*membershipdomain.Membership)}
}

func (f *fakeMembershipRepo) add(m *membershipdomain.Membership) {
	f.byKey[m.UserID+":"+m.OrganizationID] = m
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
	f.add(m)
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

// fakeOrgRepo stores orgs and shares the membership store for CreateWithOwner.
type fakeOrgRepo struct {
	byID        map[string]*domain.Organization
	memberships *fakeMembershipRepo
}

func newFakeOrgRepo(memberships *fakeMembershipRepo) *fakeOrgRepo {
	return &fakeOrgRepo{byID: make(map[string]*domain.Organization), memberships: memberships}
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	return f.byID[id], nil
}

func (f *fakeOrgRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Organization, error) {
	var out []*domain.Organization
	for _, m := range f.memberships.byKey {
		if m.UserID == userID {
			if o := f.byID[m.OrganizationID]; o != nil {
				out = append(out, o)
			}
		}
	}
	return out, nil
}

func (f *fakeOrgRepo) CreateWithOwner(ctx context.Context, o *domain.Organization, owner *membershipdomain.Membership) error {
	f.byID[o.ID] = o
	f.memberships.add(owner)
	return nil
}

func (f *fakeOrgRepo) Update(ctx context.Context, o *domain.Organization) error {
	f.byID[o.ID] = o
	return nil
}

func (f *fakeOrgRepo) DeleteCascade(ctx context.Context, id string) (bool, error) {
	if _, ok := f.byID[id]; !ok {
		return false, nil
	}
	delete(f.byID, id)
	for key, m := range f.memberships.byKey {
		if m.OrganizationID == id {
			delete(f.memberships.byKey, key)
		}
	}
	return true, nil
}

// fakeUserRepo resolves users by id.
type fakeUserRepo struct {
	byID map[string]*userdomain.User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*userdomain.User, error) {
	return f.byID[id], nil
}

type orgFixture struct {
	handler     http.Handler
	memberships *fakeMembershipRepo
	orgs        *fakeOrgRepo
}

func newOrgFixture() *orgFixture {
	memberships := newFakeMembershipRepo()
	orgs := newFakeOrgRepo(memberships)
	users := &fakeUserRepo{byID: map[string]*userdomain.User{
		"owner":  {ID: "owner", Email: "owner@example.com", Status: userdomain.StatusActive},
		"admin":  {ID: "admin", Email: "admin@example.com", Status: userdomain.StatusActive},
		"member": {ID: "member", Email: "member@example.com", Status: userdomain.StatusActive},
		"new":    {ID: "new", Email: "new@example.com", Status: userdomain.StatusActive},
	}}

	now := time.Now().UTC()
	orgs.byID["org-1"] = &domain.Organization{
		ID: "org-1", Name: "Acme", Settings: domain.DefaultSettings(),
		CreatedAt: now, UpdatedAt: now,
	}
	memberships.add(&membershipdomain.Membership{
		ID: "m-owner", OrganizationID: "org-1", UserID: "owner",
		Role: membershipdomain.RoleOwner, JoinedAt: now,
	})
	memberships.add(&membershipdomain.Membership{
		ID: "m-member", OrganizationID: "org-1", UserID: "member",
		Role: membershipdomain.RoleMember, JoinedAt: now,
	})

	svc := service.NewOrgService(orgs, memberships, users)
	r := chi.NewRouter()
	r.Route("/organizations", func(r chi.Router) {
		NewOrgHandler(svc).Routes(r)
	})
	return &orgFixture{handler: r, memberships: memberships, orgs: orgs}
}

func doOrgReq(h http.Handler, method, path string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		u := &userdomain.User{ID: userID, Status: userdomain.StatusActive}
		req = req.WithContext(middleware.WithIdentity(req.Context(), u, "session-1"))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrg(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodPost, "/organizations", map[string]string{"name": "New Org"}, "member")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	orgID, _ := body["id"].(string)
	if orgID == "" {
		t.Fatal("response missing org id")
	}
	m := f.memberships.byKey["member:"+orgID]
	if m == nil || m.Role != membershipdomain.RoleOwner {
		t.Errorf("creator should become owner, got %+v", m)
	}
}

func TestCreateOrg_MissingName(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodPost, "/organizations", map[string]string{"domain": "acme.io"}, "member")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGetOrg_NonMemberForbidden(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodGet, "/organizations/org-1", nil, "new")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestGetOrg_Unauthenticated(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodGet, "/organizations/org-1", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAddMember_CreatedThenOK(t *testing.T) {
	f := newOrgFixture()
	body := map[string]string{"user_id": "new", "role": "MEMBER"}

	rec := doOrgReq(f.handler, http.MethodPost, "/organizations/org-1/members", body, "owner")
	if rec.Code != http.StatusCreated {
		t.Fatalf("first add: status = %d, want 201: %s", rec.Code, rec.Body.String())
	}

	rec = doOrgReq(f.handler, http.MethodPost, "/organizations/org-1/members", body, "owner")
	if rec.Code != http.StatusOK {
		t.Fatalf("second add: status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}

func TestAddMember_OwnerRoleRejected(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodPost, "/organizations/org-1/members",
		map[string]string{"user_id": "new", "role": "OWNER"}, "owner")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestAddMember_RequiresAdmin(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodPost, "/organizations/org-1/members",
		map[string]string{"user_id": "new", "role": "MEMBER"}, "member")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestRemoveMember_OwnerProtected(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodDelete, "/organizations/org-1/members/owner", nil, "owner")
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestRemoveMember(t *testing.T) {
	f := newOrgFixture()

	rec := doOrgReq(f.handler, http.MethodDelete, "/organizations/org-1/members/member", nil, "owner")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if _, ok := f.memberships.byKey["member:org-1"]; ok {
		t.Error("membership should be removed")
	}
}

func TestDeleteOrg_OwnerOnly(t *testing.T) {
	f := newOrgFixture()
	f.memberships.add(&membershipdomain.Membership{
		ID: "m-admin", OrganizationID: "org-1", UserID: "admin",
		Role: membershipdomain.RoleAdmin, JoinedAt: time.Now().UTC(),
	})

	rec := doOrgReq(f.handler, http.MethodDelete, "/organizations/org-1", nil, "admin")
	if rec.Code != http.StatusForbidden {
		t.Fatalf("admin delete: status = %d, want 403", rec.Code)
	}

	rec = doOrgReq(f.handler, http.MethodDelete, "/organizations/org-1", nil, "owner")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("owner delete: status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}
