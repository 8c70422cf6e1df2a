package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/edify-labs/edify/internal/store"
	"github.com/edify-labs/edify/internal/testutil"
)

func TestOrganizations_CreateAndMembers(t *testing.T) {
	db := testutil.NewTestDB(t)
	orgs := store.NewOrganizationStore(db)
	users := store.NewUserStore(db)
	ctx := context.Background()

	org, err := orgs.Create(ctx, "Oakwood Academy", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if org.Slug != "oakwood-academy" {
		t.Errorf("slug = %q, want oakwood-academy", org.Slug)
	}

	if _, err := orgs.Create(ctx, "Oakwood Academy Trust", "oakwood-academy", ""); !errors.Is(err, store.ErrSlugTaken) {
		t.Errorf("duplicate slug err = %v, want ErrSlugTaken", err)
	}

	u, err := users.Upsert(ctx, "test", "sub1", "teacher@oakwood.example", "Ms Teacher", "", "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	if err := orgs.AddMember(ctx, org.ID, u.ID, store.MemberOwner); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if err := orgs.AddMember(ctx, org.ID, u.ID, store.MemberRole); !errors.Is(err, store.ErrAlreadyMember) {
		t.Errorf("re-add err = %v, want ErrAlreadyMember", err)
	}

	// First membership becomes the primary organization.
	u, err = users.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.OrgID() != org.ID {
		t.Errorf("primary org = %q, want %q", u.OrgID(), org.ID)
	}

	members, err := orgs.ListMembers(ctx, org.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].MemberRole != store.MemberOwner {
		t.Fatalf("members = %+v", members)
	}

	list, err := orgs.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].MemberCount != 1 {
		t.Errorf("list = %+v", list)
	}

	if err := orgs.RemoveMember(ctx, org.ID, u.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	if err := orgs.RemoveMember(ctx, org.ID, u.ID); !errors.Is(err, store.ErrNotMember) {
		t.Errorf("second remove err = %v, want ErrNotMember", err)
	}
	u, _ = users.GetByID(ctx, u.ID)
	if u.OrgID() != "" {
		t.Errorf("primary org should be cleared, got %q", u.OrgID())
	}
}

func TestOrganizations_InvalidInput(t *testing.T) {
	db := testutil.NewTestDB(t)
	orgs := store.NewOrganizationStore(db)
	ctx := context.Background()

	if _, err := orgs.Create(ctx, "!!!", "", ""); !errors.Is(err, store.ErrSlugInvalid) {
		t.Errorf("empty derived slug err = %v, want ErrSlugInvalid", err)
	}
	if _, err := orgs.Create(ctx, "Admin", "admin", ""); !errors.Is(err, store.ErrSlugReserved) {
		t.Errorf("reserved slug err = %v, want ErrSlugReserved", err)
	}

	org, err := orgs.Create(ctx, "Riverside", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := orgs.AddMember(ctx, org.ID, "nobody", "guest"); !errors.Is(err, store.ErrInvalidRole) {
		t.Errorf("bad role err = %v, want ErrInvalidRole", err)
	}
}

func TestOrganizations_DeleteDetachesUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	orgs := store.NewOrganizationStore(db)
	users := store.NewUserStore(db)
	ctx := context.Background()

	org, err := orgs.Create(ctx, "Hillside", "", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	u, err := users.Upsert(ctx, "test", "sub1", "t@hillside.example", "T", "", "")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := orgs.AddMember(ctx, org.ID, u.ID, store.MemberRole); err != nil {
		t.Fatalf("add member: %v", err)
	}

	if err := orgs.Delete(ctx, org.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := orgs.GetBySlug(ctx, "hillside"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("get after delete err = %v, want ErrNotFound", err)
	}
	u, _ = users.GetByID(ctx, u.ID)
	if u.OrgID() != "" {
		t.Errorf("user still attached to deleted org")
	}
	joined, err := orgs.ListForUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("list for user: %v", err)
	}
	if len(joined) != 0 {
		t.Errorf("memberships should cascade, got %d", len(joined))
	}
}
