// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"workstack/backend/internal/config"
	"workstack/backend/internal/db"
	membershipdomain "workstack/backend/internal/membership/domain"
	membershiprepo "workstack/backend/internal/membership/repository"
	orgdomain "workstack/backend/internal/organization/domain"
	orgrepo "workstack/backend/internal/organization/repository"
	"workstack/backend/internal/security"
	taskdomain "workstack/backend/internal/task/domain"
	taskrepo "workstack/backend/internal/task/repository"
	teamdomain "workstack/backend/internal/team/domain"
	teamrepo "workstack/backend/internal/team/repository"
	userdomain "workstack/backend/internal/user/domain"
	userrepo "workstack/backend/internal/user/repository"
)

const (
	devUserEmail    = "dev@example.com"
	memberEmail     = "member@example.com"
	devPassword     = "password123"
	devUserID       = "dev-user-001"
	devUser2ID      = "dev-user-002"
	devOrgID        = "dev-org-001"
	devMembershipID = "dev-membership-001"
	devMember2ID    = "dev-membership-002"
	devTeamID       = "dev-team-001"
	devTeamMemberID = "dev-team-member-001"
	devListID       = "dev-list-001"
	devTaskID       = "dev-task-001"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	memberships := membershiprepo.NewPostgresRepository(conn)
	teams := teamrepo.NewPostgresRepository(conn)
	tasks := taskrepo.NewPostgresRepository(conn)

	existing, err := users.GetByEmail(ctx, devUserEmail)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Println("Seed already applied (dev@example.com exists). Skipping.")
		os.Exit(0)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	passwordHash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()

	if err := users.Create(ctx, &userdomain.User{
		ID:           devUserID,
		Email:        devUserEmail,
		Name:         "Dev User",
		PasswordHash: passwordHash,
		Status:       userdomain.StatusActive,
		Timezone:     "UTC",
		Language:     "en",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	if err := users.Create(ctx, &userdomain.User{
		ID:           devUser2ID,
		Email:        memberEmail,
		Name:         "Member User",
		PasswordHash: passwordHash,
		Status:       userdomain.StatusActive,
		Timezone:     "UTC",
		Language:     "en",
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		log.Fatalf("create member user: %v", err)
	}

	if err := orgs.CreateWithOwner(ctx, &orgdomain.Organization{
		ID:        devOrgID,
		Name:      "Acme Dev",
		Settings:  orgdomain.DefaultSettings(),
		CreatedAt: now,
		UpdatedAt: now,
	}, &membershipdomain.Membership{
		ID:             devMembershipID,
		OrganizationID: devOrgID,
		UserID:         devUserID,
		Role:           membershipdomain.RoleOwner,
		JoinedAt:       now,
	}); err != nil {
		log.Fatalf("create org: %v", err)
	}

	if err := memberships.Create(ctx, &membershipdomain.Membership{
		ID:             devMember2ID,
		OrganizationID: devOrgID,
		UserID:         devUser2ID,
		Role:           membershipdomain.RoleMember,
		JoinedAt:       now,
	}); err != nil {
		log.Fatalf("create member membership: %v", err)
	}

	if err := teams.Create(ctx, &teamdomain.Team{
		ID:             devTeamID,
		OrganizationID: devOrgID,
		Name:           "Platform",
		Description:    "Core platform team",
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		log.Fatalf("create team: %v", err)
	}

	if err := teams.CreateMember(ctx, &teamdomain.TeamMember{
		ID:          devTeamMemberID,
		TeamID:      devTeamID,
		OrgMemberID: devMember2ID,
		Role:        teamdomain.RoleMember,
		JoinedAt:    now,
	}); err != nil {
		log.Fatalf("create team member: %v", err)
	}

	if err := tasks.CreateList(ctx, &taskdomain.TaskList{
		ID:             devListID,
		OrganizationID: devOrgID,
		Name:           "Backlog",
		Position:       1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		log.Fatalf("create task list: %v", err)
	}

	if err := tasks.CreateTask(ctx, &taskdomain.Task{
		ID:        devTaskID,
		ListID:    devListID,
		CreatorID: devUserID,
		Title:     "Set up local environment",
		Status:    taskdomain.StatusTodo,
		Priority:  taskdomain.PriorityNormal,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		log.Fatalf("create task: %v", err)
	}

	log.Println("Seed applied.")
}
