package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/mindmate/mindmate-backend/internal/domain"
	"github.com/mindmate/mindmate-backend/internal/llm"
)

// fakeMoodStore is an in-memory MoodStore for a single user.
type fakeMoodStore struct {
	entries  map[string]domain.MoodEntry // date -> entry
	messages map[string][]string         // date -> the user's texts that day
}

func newFakeMoodStore() *fakeMoodStore {
	return &fakeMoodStore{
		entries:  make(map[string]domain.MoodEntry),
		messages: make(map[string][]string),
	}
}

func (f *fakeMoodStore) UpsertMood(_ context.Context, _ *gorm.DB, userID uint, date, emoji, source string) error {
	f.entries[date] = domain.MoodEntry{UserID: userID, Date: date, MoodEmoji: emoji, Source: source}
	return nil
}

func (f *fakeMoodStore) GetMood(_ context.Context, _ *gorm.DB, _ uint, date string) (*domain.MoodEntry, error) {
	if e, ok := f.entries[date]; ok {
		return &e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeMoodStore) MonthMoods(_ context.Context, _ *gorm.DB, _ uint, year, month int) ([]domain.MoodEntry, error) {
	prefix := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("2006-01-")
	var out []domain.MoodEntry
	for date, e := range f.entries {
		if len(date) >= len(prefix) && date[:len(prefix)] == prefix {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeMoodStore) UserMessagesForDay(_ context.Context, _ *gorm.DB, _ uint, day time.Time) ([]string, error) {
	return f.messages[day.Format("2006-01-02")], nil
}

func newMoodFixture(reply string, callErr error) (*MoodService, *fakeMoodStore, *fakeCompleter) {
	store := newFakeMoodStore()
	model := &fakeCompleter{reply: reply, err: callErr}
	svc := NewMoodService(nil, store, model)
	svc.Now = func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc, store, model
}

func TestSetMood_ValidatesAndStoresManual(t *testing.T) {
	svc, store, _ := newMoodFixture("", nil)
	ctx := context.Background()

	if err := svc.Set(ctx, 1, "2026-03-10", " "); !errors.Is(err, ErrValidation) {
		t.Errorf("blank emoji: %v", err)
	}
	if err := svc.Set(ctx, 1, "2026-3-10", "😊"); !errors.Is(err, ErrValidation) {
		t.Errorf("unpadded date: %v", err)
	}
	if err := svc.Set(ctx, 1, "not-a-date", "😊"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad date: %v", err)
	}

	if err := svc.Set(ctx, 1, "2026-03-10", "😢"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	e := store.entries["2026-03-10"]
	if e.MoodEmoji != "😢" || e.Source != domain.MoodSourceManual {
		t.Errorf("stored entry: %+v", e)
	}
}

func TestGetMood_NotFoundAndBadDate(t *testing.T) {
	svc, _, _ := newMoodFixture("", nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, 1, "bogus"); !errors.Is(err, ErrValidation) {
		t.Errorf("bad date: %v", err)
	}
	if _, err := svc.Get(ctx, 1, "2026-03-10"); !errors.Is(err, ErrMoodNotFound) {
		t.Errorf("absent day: %v", err)
	}
}

func TestAutoAnalyze_NoMessagesWritesNothing(t *testing.T) {
	svc, store, model := newMoodFixture("😌", nil)

	_, _, err := svc.AutoAnalyze(context.Background(), 1, "2026-03-10")
	if !errors.Is(err, ErrNoMessagesForDay) {
		t.Fatalf("got %v, want ErrNoMessagesForDay", err)
	}
	if len(store.entries) != 0 {
		t.Error("nothing may be written for an empty day")
	}
	if len(model.calls) != 0 {
		t.Error("classifier must not be called for an empty day")
	}
}

func TestAutoAnalyze_ClassifiesAndStoresAuto(t *testing.T) {
	svc, store, model := newMoodFixture(" 😤 \n", nil)
	store.messages["2026-03-10"] = []string{"bad day", "so frustrating"}

	date, emoji, err := svc.AutoAnalyze(context.Background(), 1, "2026-03-10")
	if err != nil {
		t.Fatalf("AutoAnalyze: %v", err)
	}
	if date != "2026-03-10" {
		t.Errorf("date: %q", date)
	}
	if emoji != "😤" {
		t.Errorf("emoji: %q", emoji)
	}
	e := store.entries["2026-03-10"]
	if e.MoodEmoji != "😤" || e.Source != domain.MoodSourceAuto {
		t.Errorf("stored entry: %+v", e)
	}

	call := model.calls[0]
	if call.maxTokens != moodMaxTokens || call.temperature != moodTemperature {
		t.Errorf("sampling params: %+v", call)
	}
	if len(call.turns) != 1 || call.turns[0].Content != "bad day so frustrating" {
		t.Errorf("joined text: %+v", call.turns)
	}
}

func TestAutoAnalyze_ClassifierFailureStoresDefault(t *testing.T) {
	for name, fx := range map[string]struct {
		reply string
		err   error
	}{
		"upstream error": {"", &llm.Error{Reason: llm.ReasonNetwork}},
		"empty reply":    {"   ", nil},
	} {
		svc, store, _ := newMoodFixture(fx.reply, fx.err)
		store.messages["2026-03-10"] = []string{"hello"}

		_, emoji, err := svc.AutoAnalyze(context.Background(), 1, "2026-03-10")
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if emoji != defaultMoodEmoji {
			t.Errorf("%s: emoji %q, want default", name, emoji)
		}
		if e := store.entries["2026-03-10"]; e.Source != domain.MoodSourceAuto {
			t.Errorf("%s: stored entry %+v", name, e)
		}
	}
}

func TestAutoAnalyze_EmptyDateUsesClock(t *testing.T) {
	svc, store, _ := newMoodFixture("😌", nil)
	store.messages["2026-03-15"] = []string{"calm afternoon"}

	date, _, err := svc.AutoAnalyze(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("AutoAnalyze: %v", err)
	}
	// The returned date must be the one the service resolved and wrote, not
	// something re-derived by the caller.
	if date != "2026-03-15" {
		t.Errorf("resolved date: %q", date)
	}
	if _, ok := store.entries["2026-03-15"]; !ok {
		t.Error("entry not keyed by the injected clock's today")
	}
}

func TestAutoAnalyze_ReplacesManualEntry(t *testing.T) {
	svc, store, _ := newMoodFixture("😴", nil)
	store.messages["2026-03-10"] = []string{"so tired"}

	if err := svc.Set(context.Background(), 1, "2026-03-10", "🥳"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, _, err := svc.AutoAnalyze(context.Background(), 1, "2026-03-10"); err != nil {
		t.Fatalf("AutoAnalyze: %v", err)
	}
	e := store.entries["2026-03-10"]
	if e.MoodEmoji != "😴" || e.Source != domain.MoodSourceAuto {
		t.Errorf("entry after auto run: %+v", e)
	}
}

func TestMonth_AutoAnalyzesMissingToday(t *testing.T) {
	svc, store, _ := newMoodFixture("😌", nil)
	store.entries["2026-03-01"] = domain.MoodEntry{UserID: 1, Date: "2026-03-01", MoodEmoji: "😊", Source: domain.MoodSourceManual}
	store.messages["2026-03-15"] = []string{"quiet day"}

	moods, err := svc.Month(context.Background(), 1, 2026, 3)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(moods) != 2 {
		t.Fatalf("entries: %d, want 2 (prior + today)", len(moods))
	}
	if moods[1].Date != "2026-03-15" || moods[1].MoodEmoji != "😌" {
		t.Errorf("today's entry: %+v", moods[1])
	}
}

func TestMonth_SkipsAnalysisWhenTodayPresent(t *testing.T) {
	svc, store, model := newMoodFixture("😌", nil)
	store.entries["2026-03-15"] = domain.MoodEntry{UserID: 1, Date: "2026-03-15", MoodEmoji: "🥳", Source: domain.MoodSourceManual}

	moods, err := svc.Month(context.Background(), 1, 2026, 3)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(model.calls) != 0 {
		t.Error("classifier must not run when today is already recorded")
	}
	if len(moods) != 1 || moods[0].MoodEmoji != "🥳" {
		t.Errorf("entries: %+v", moods)
	}
}

func TestMonth_EmptyDayFailureIsSilent(t *testing.T) {
	svc, store, _ := newMoodFixture("😌", nil)
	store.entries["2026-03-01"] = domain.MoodEntry{UserID: 1, Date: "2026-03-01", MoodEmoji: "😊", Source: domain.MoodSourceManual}
	// No messages today: the side-effect analysis fails and is swallowed.

	moods, err := svc.Month(context.Background(), 1, 2026, 3)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	if len(moods) != 1 {
		t.Errorf("entries: %d, want the prior read as-is", len(moods))
	}
}
