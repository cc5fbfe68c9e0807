package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/creator-lounge/internal/apperror"
	"github.com/sakif/creator-lounge/internal/model"
)

func seedBands(t *testing.T, db *DB) {
	t.Helper()
	createTestChannel(t, db, "free", 0, nil)
	createTestChannel(t, db, "lounge-100", 100, int64Ptr(999))
	createTestChannel(t, db, "lounge-10k", 10000, int64Ptr(99999))
	createTestChannel(t, db, "lounge-100k", 100000, int64Ptr(999999))
	createTestChannel(t, db, "lounge-1m", 1000000, nil)
}

func slugs(channels []model.Channel) map[string]bool {
	out := make(map[string]bool, len(channels))
	for _, c := range channels {
		out[c.Slug] = true
	}
	return out
}

func TestListAccessibleChannels_StrictBands(t *testing.T) {
	db := newTestDB(t)
	seedBands(t, db)

	got, err := db.ListAccessibleChannels(context.Background(), 150000)
	if err != nil {
		t.Fatalf("ListAccessibleChannels() error = %v", err)
	}
	set := slugs(got)

	for _, want := range []string{"free", "lounge-100k"} {
		if !set[want] {
			t.Errorf("150000 subscribers should reach %s", want)
		}
	}
	for _, notWant := range []string{"lounge-100", "lounge-10k", "lounge-1m"} {
		if set[notWant] {
			t.Errorf("150000 subscribers should not reach %s", notWant)
		}
	}
}

func TestListAccessibleChannels_BoundariesInclusive(t *testing.T) {
	db := newTestDB(t)
	seedBands(t, db)

	for _, n := range []int64{100, 999} {
		got, err := db.ListAccessibleChannels(context.Background(), n)
		if err != nil {
			t.Fatalf("ListAccessibleChannels(%d) error = %v", n, err)
		}
		if !slugs(got)["lounge-100"] {
			t.Errorf("ListAccessibleChannels(%d) should include lounge-100", n)
		}
	}

	got, err := db.ListAccessibleChannels(context.Background(), 1000)
	if err != nil {
		t.Fatalf("ListAccessibleChannels(1000) error = %v", err)
	}
	if slugs(got)["lounge-100"] {
		t.Error("ListAccessibleChannels(1000) should exclude lounge-100")
	}
}

func TestUpsertChannel_KeepsIdentity(t *testing.T) {
	db := newTestDB(t)
	first := createTestChannel(t, db, "free", 0, nil)

	again := &model.Channel{Name: "Free Talk", Slug: "free", IsActive: true, SortOrder: 3}
	if err := db.UpsertChannel(context.Background(), again); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("upsert changed id from %s to %s", first.ID, again.ID)
	}

	got, err := db.GetChannel(context.Background(), "free")
	if err != nil {
		t.Fatalf("GetChannel() error = %v", err)
	}
	if got.Name != "Free Talk" || got.SortOrder != 3 {
		t.Errorf("channel after upsert = %+v", got)
	}

	byID, err := db.GetChannel(context.Background(), first.ID)
	if err != nil || byID.Slug != "free" {
		t.Errorf("GetChannel(id) = %+v, %v", byID, err)
	}

	if _, err := db.GetChannel(context.Background(), "nope"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetChannel() error = %v, want ErrNotFound", err)
	}
}

func TestListActiveChannels_SkipsInactive(t *testing.T) {
	db := newTestDB(t)
	createTestChannel(t, db, "free", 0, nil)
	hidden := &model.Channel{Name: "old", Slug: "old", IsActive: false}
	if err := db.UpsertChannel(context.Background(), hidden); err != nil {
		t.Fatalf("UpsertChannel() error = %v", err)
	}

	got, err := db.ListActiveChannels(context.Background())
	if err != nil {
		t.Fatalf("ListActiveChannels() error = %v", err)
	}
	if len(got) != 1 || got[0].Slug != "free" {
		t.Errorf("ListActiveChannels() = %+v", got)
	}
}

func TestChannelAccess_UpsertAndExpiry(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, model.ProviderYouTube, "UC1", 0)
	free := createTestChannel(t, db, "free", 0, nil)
	tips := createTestChannel(t, db, "creator-tips", 0, nil)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	if _, err := db.UpsertChannelAccess(ctx, user.ID, []string{free.ID, tips.ID}, past); err != nil {
		t.Fatalf("UpsertChannelAccess() error = %v", err)
	}

	valid, err := db.ListValidChannelAccess(ctx, user.ID, time.Now())
	if err != nil {
		t.Fatalf("ListValidChannelAccess() error = %v", err)
	}
	if len(valid) != 0 {
		t.Errorf("expired grants listed: %+v", valid)
	}

	future := time.Now().Add(24 * time.Hour)
	grants, err := db.UpsertChannelAccess(ctx, user.ID, []string{free.ID}, future)
	if err != nil {
		t.Fatalf("UpsertChannelAccess() renew error = %v", err)
	}
	if len(grants) != 1 || !grants[0].ValidAt(time.Now()) {
		t.Fatalf("renewed grants = %+v", grants)
	}

	valid, err = db.ListValidChannelAccess(ctx, user.ID, time.Now())
	if err != nil {
		t.Fatalf("ListValidChannelAccess() error = %v", err)
	}
	if len(valid) != 1 || valid[0].ChannelID != free.ID || valid[0].Channel == nil {
		t.Errorf("valid grants = %+v", valid)
	}

	g, err := db.GetChannelAccess(ctx, user.ID, tips.ID)
	if err != nil {
		t.Fatalf("GetChannelAccess() error = %v", err)
	}
	if g.ValidAt(time.Now()) {
		t.Error("stale grant should not be valid")
	}

	if _, err := db.GetChannelAccess(ctx, user.ID, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetChannelAccess() error = %v, want ErrNotFound", err)
	}
}
