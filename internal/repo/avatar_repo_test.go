package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
)

func uintptr2(v uint) *uint { return &v }

// seedCatalog seeds personas and returns the preset and user-defined ids.
func seedCatalog(t *testing.T, db *gorm.DB) (preset, userDefined uint) {
	t.Helper()
	if err := SeedPersonas(db); err != nil {
		t.Fatalf("seed personas: %v", err)
	}
	var personas []domain.Persona
	if err := db.Order("id").Find(&personas).Error; err != nil {
		t.Fatalf("load personas: %v", err)
	}
	for _, p := range personas {
		if p.IsUserDefined() {
			userDefined = p.ID
		} else if preset == 0 {
			preset = p.ID
		}
	}
	if preset == 0 || userDefined == 0 {
		t.Fatal("catalog missing preset or user-defined persona")
	}
	return preset, userDefined
}

func mustCreateAvatar(t *testing.T, db *gorm.DB, userID, personaID uint, name string) *domain.Avatar {
	t.Helper()
	a := &domain.Avatar{
		UserID:         userID,
		AvatarName:     name,
		AppearanceType: "boy",
		PersonaID:      personaID,
	}
	if err := CreateAvatar(context.Background(), db, a); err != nil {
		t.Fatalf("CreateAvatar: %v", err)
	}
	return a
}

func TestListAvatars_JoinsPersonaNewestFirst(t *testing.T) {
	db := newTestDB(t)
	preset, _ := seedCatalog(t, db)
	ctx := context.Background()

	first := mustCreateAvatar(t, db, 1, preset, "First")
	second := mustCreateAvatar(t, db, 1, preset, "Second")
	mustCreateAvatar(t, db, 2, preset, "Other user")

	got, err := ListAvatars(ctx, db, 1)
	if err != nil {
		t.Fatalf("ListAvatars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d avatars, want 2", len(got))
	}
	// created_at ties resolve by id descending, so newest insertion first.
	if got[0].ID != second.ID || got[1].ID != first.ID {
		t.Fatalf("order wrong: %d then %d", got[0].ID, got[1].ID)
	}
	if got[0].PersonaName == "" || got[0].SystemPrompt == "" {
		t.Fatalf("persona fields not joined: %+v", got[0])
	}
}

func TestGetAvatar_OwnershipScope(t *testing.T) {
	db := newTestDB(t)
	preset, _ := seedCatalog(t, db)
	ctx := context.Background()

	a := mustCreateAvatar(t, db, 1, preset, "Mine")

	if _, err := GetAvatar(ctx, db, a.ID, 1); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if _, err := GetAvatar(ctx, db, a.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("cross-user read: got %v, want not found", err)
	}
	// userID 0 skips the ownership filter (internal reads).
	if _, err := GetAvatar(ctx, db, a.ID, 0); err != nil {
		t.Fatalf("unscoped read: %v", err)
	}
	if _, err := GetAvatar(ctx, db, 9999, 0); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing avatar: got %v, want not found", err)
	}
}

func TestUpdateAvatar_PatchAndOwnership(t *testing.T) {
	db := newTestDB(t)
	preset, userDefined := seedCatalog(t, db)
	ctx := context.Background()

	a := mustCreateAvatar(t, db, 1, preset, "Patchable")

	custom := "You are a pirate."
	err := UpdateAvatar(ctx, db, a.ID, 1, AvatarPatch{
		AvatarName:    strptr("Renamed"),
		PersonaID:     uintptr2(userDefined),
		CustomPersona: &custom,
	})
	if err != nil {
		t.Fatalf("UpdateAvatar: %v", err)
	}

	v, err := GetAvatar(ctx, db, a.ID, 1)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if v.AvatarName != "Renamed" || v.PersonaID != userDefined || v.AppearanceType != "boy" {
		t.Fatalf("patch semantics broken: %+v", v.Avatar)
	}
	if v.EffectivePrompt() != custom {
		t.Fatalf("effective prompt: got %q, want custom override", v.EffectivePrompt())
	}

	// Cross-user update must not touch the row.
	err = UpdateAvatar(ctx, db, a.ID, 2, AvatarPatch{AvatarName: strptr("Stolen")})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("cross-user update: got %v, want not found", err)
	}
	v, _ = GetAvatar(ctx, db, a.ID, 1)
	if v.AvatarName != "Renamed" {
		t.Fatalf("cross-user update modified the row: %+v", v.Avatar)
	}
}

func TestUpdateAvatar_EmptyPatchStillChecksOwnership(t *testing.T) {
	db := newTestDB(t)
	preset, _ := seedCatalog(t, db)
	ctx := context.Background()

	a := mustCreateAvatar(t, db, 1, preset, "NoOp")

	if err := UpdateAvatar(ctx, db, a.ID, 1, AvatarPatch{}); err != nil {
		t.Fatalf("empty patch by owner: %v", err)
	}
	if err := UpdateAvatar(ctx, db, a.ID, 2, AvatarPatch{}); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("empty patch by stranger: got %v, want not found", err)
	}
}

func TestDeleteAvatar_CascadesMessages(t *testing.T) {
	db := newTestDB(t)
	preset, _ := seedCatalog(t, db)
	ctx := context.Background()

	a := mustCreateAvatar(t, db, 1, preset, "Doomed")
	keep := mustCreateAvatar(t, db, 1, preset, "Kept")

	for _, av := range []uint{a.ID, keep.ID} {
		if _, err := CreateMessage(ctx, db, 1, av, domain.SenderUser, "hello"); err != nil {
			t.Fatalf("seed message: %v", err)
		}
	}

	if err := DeleteAvatar(ctx, db, a.ID, 1); err != nil {
		t.Fatalf("DeleteAvatar: %v", err)
	}

	if _, err := GetAvatar(ctx, db, a.ID, 1); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("avatar still readable after delete: %v", err)
	}
	var count int64
	if err := db.Model(&domain.ChatMessage{}).Where("avatar_id = ?", a.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("deleted avatar still has %d messages", count)
	}
	// The sibling's log is untouched.
	remaining, err := RecentMessages(ctx, db, 1, keep.ID, 10)
	if err != nil || len(remaining) != 1 {
		t.Fatalf("sibling log: %v (%d msgs)", err, len(remaining))
	}
}

func TestDeleteAvatar_CrossUserLeavesEverything(t *testing.T) {
	db := newTestDB(t)
	preset, _ := seedCatalog(t, db)
	ctx := context.Background()

	a := mustCreateAvatar(t, db, 1, preset, "Protected")
	if _, err := CreateMessage(ctx, db, 1, a.ID, domain.SenderUser, "private"); err != nil {
		t.Fatal(err)
	}

	if err := DeleteAvatar(ctx, db, a.ID, 2); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("cross-user delete: got %v, want not found", err)
	}
	if _, err := GetAvatar(ctx, db, a.ID, 1); err != nil {
		t.Fatalf("avatar vanished after failed delete: %v", err)
	}
	msgs, err := RecentMessages(ctx, db, 1, a.ID, 10)
	if err != nil || len(msgs) != 1 {
		t.Fatalf("messages vanished after failed delete: %v (%d)", err, len(msgs))
	}
}
