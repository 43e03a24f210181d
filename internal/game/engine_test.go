package game_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/robalobadob/wordchain/internal/game"
	"github.com/robalobadob/wordchain/internal/store"
	"github.com/robalobadob/wordchain/internal/words"
)

type firstPicker struct{}

func (firstPicker) IntN(int) int { return 0 }

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// flakyStore fails selected calls on top of an in-memory store.
type flakyStore struct {
	*store.Memory
	failCreate bool
	failFinish bool
}

var errStorage = errors.New("storage unavailable")

func (f *flakyStore) Create(ctx context.Context, in game.NewSession) (game.Session, error) {
	if f.failCreate {
		return game.Session{}, errStorage
	}
	return f.Memory.Create(ctx, in)
}

func (f *flakyStore) Finish(ctx context.Context, id string, fin game.Final) error {
	if f.failFinish {
		return errStorage
	}
	return f.Memory.Finish(ctx, id, fin)
}

func testVocabulary() *words.Vocabulary {
	return words.New([]game.Entry{
		{Word: "ruby", Category: game.CategoryGem},
		{Word: "yield", Category: game.CategoryKeyword},
		{Word: "do", Category: game.CategoryKeyword},
		{Word: "open", Category: game.CategoryMethod},
		{Word: "each", Category: game.CategoryMethod},
		{Word: "Numeric", Category: game.CategoryClass},
	})
}

type fixture struct {
	engine *game.Engine
	mem    *store.Memory
	flaky  *flakyStore
	clock  *fakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	flaky := &flakyStore{Memory: mem}
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	eng := game.NewEngine(testVocabulary(), mem, flaky,
		game.WithPicker(firstPicker{}),
		game.WithClock(clock.Now),
		game.WithLogger(zerolog.Nop()),
	)
	return &fixture{engine: eng, mem: mem, flaky: flaky, clock: clock}
}

func (f *fixture) turns(t *testing.T, id string) []game.Turn {
	t.Helper()
	turns, err := f.mem.List(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return turns
}

func TestAliceEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	snap, err := f.engine.CreateSession(ctx, "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if snap.Phase != game.PhaseHumanTurn || snap.PlayerName != "Alice" || snap.Score != nil {
		t.Fatalf("unexpected first snapshot %+v", snap)
	}

	f.clock.Advance(5 * time.Second)
	out, err := f.engine.SubmitWord(ctx, snap.SessionID, "ruby")
	if err != nil {
		t.Fatalf("submit ruby: %v", err)
	}
	if !out.Accepted || out.OpponentReply != "yield" || out.Ended {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if out.Snapshot.NextLetter != "d" || out.Snapshot.Phase != game.PhaseHumanTurn {
		t.Fatalf("unexpected snapshot %+v", out.Snapshot)
	}

	f.clock.Advance(5 * time.Second)
	out, err = f.engine.SubmitWord(ctx, snap.SessionID, "do")
	if err != nil {
		t.Fatalf("submit do: %v", err)
	}
	if out.OpponentReply != "open" {
		t.Fatalf("expected opponent to answer open, got %+v", out)
	}

	f.clock.Advance(10 * time.Second)
	out, err = f.engine.SignalTimeout(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("timeout: %v", err)
	}
	if !out.Ended || out.Summary == nil || out.Summary.Reason != game.EndHumanTimeout {
		t.Fatalf("unexpected timeout outcome %+v", out)
	}

	want, _ := game.CalculateScore(4, 20)
	if out.Summary.Score != want.Points || out.Summary.TurnCount != 4 || out.Summary.DurationSeconds != 20 {
		t.Fatalf("summary %+v, want score %d for 4 turns in 20s", out.Summary, want.Points)
	}
	if out.Summary.Score != 600 {
		t.Fatalf("expected 600, got %d", out.Summary.Score)
	}

	state, err := f.engine.GetState(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if !state.Ended || state.Phase != game.PhaseEnded || state.Score == nil || *state.Score != 600 {
		t.Fatalf("unexpected final state %+v", state)
	}

	turns := f.turns(t, snap.SessionID)
	wantWords := []string{"ruby", "yield", "do", "open"}
	for i, tr := range turns {
		if tr.Word != wantWords[i] || tr.Number != i+1 {
			t.Fatalf("turn %d = %+v", i, tr)
		}
	}

	if _, err := f.engine.SubmitWord(ctx, snap.SessionID, "numeric"); !errors.Is(err, game.ErrWrongTurnState) {
		t.Fatalf("expected wrong turn state after end, got %v", err)
	}
	if _, err := f.engine.SignalTimeout(ctx, snap.SessionID); !errors.Is(err, game.ErrWrongTurnState) {
		t.Fatalf("expected wrong turn state for second timeout, got %v", err)
	}
}

func TestOpponentSurrenders(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Bob")
	if err != nil {
		t.Fatal(err)
	}

	out, err := f.engine.SubmitWord(ctx, snap.SessionID, "each")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !out.Accepted || !out.Surrendered || !out.Ended {
		t.Fatalf("expected surrender, got %+v", out)
	}
	if out.Summary.Reason != game.EndOpponentExhausted || out.Snapshot.EndReason != game.EndOpponentExhausted {
		t.Fatalf("unexpected end reason %+v", out)
	}
	if n := len(f.turns(t, snap.SessionID)); n != 1 {
		t.Fatalf("expected only the human turn, got %d", n)
	}
}

func TestValidationLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Carol")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.SubmitWord(ctx, snap.SessionID, "ruby"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		word string
		want error
	}{
		{"d", game.ErrWordTooShort},
		{"", game.ErrWordTooShort},
		{"RUBY", game.ErrWordAlreadyUsed},
		{"Yield", game.ErrWordAlreadyUsed},
		{"open", game.ErrWrongStartingLetter},
		{"define", game.ErrWordNotRecognized},
	}
	for _, tt := range tests {
		_, err := f.engine.SubmitWord(ctx, snap.SessionID, tt.word)
		if !errors.Is(err, tt.want) {
			t.Fatalf("%q: expected %v, got %v", tt.word, tt.want, err)
		}
		if n := len(f.turns(t, snap.SessionID)); n != 2 {
			t.Fatalf("%q: turn log changed to %d turns", tt.word, n)
		}
	}

	state, err := f.engine.GetState(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != game.PhaseHumanTurn || state.Ended {
		t.Fatalf("state changed after validation failures: %+v", state)
	}
}

func TestConcurrentSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Dave")
	if err != nil {
		t.Fatal(err)
	}

	a, err := f.engine.Load(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	b, err := f.engine.Load(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, g := range []*game.Game{a, b} {
		wg.Add(1)
		go func(i int, g *game.Game, word string) {
			defer wg.Done()
			_, errs[i] = g.SubmitHumanWord(ctx, word)
		}(i, g, []string{"ruby", "do"}[i])
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, game.ErrConcurrentModification):
			conflicts++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d/%d", ok, conflicts)
	}
	if n := len(f.turns(t, snap.SessionID)); n != 2 {
		t.Fatalf("expected 2 turns, got %d", n)
	}
}

func TestTimeoutRacesSubmit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Erin")
	if err != nil {
		t.Fatal(err)
	}
	a, _ := f.engine.Load(ctx, snap.SessionID)
	b, _ := f.engine.Load(ctx, snap.SessionID)

	if _, err := a.SubmitHumanWord(ctx, "ruby"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Timeout(ctx); !errors.Is(err, game.ErrConcurrentModification) {
		t.Fatalf("stale timeout: expected concurrent modification, got %v", err)
	}

	c, _ := f.engine.Load(ctx, snap.SessionID)
	if _, err := c.Timeout(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SubmitHumanWord(ctx, "do"); !errors.Is(err, game.ErrConcurrentModification) {
		t.Fatalf("submit after end: expected concurrent modification, got %v", err)
	}
}

func TestSessionCreationFailed(t *testing.T) {
	f := newFixture(t)
	f.flaky.failCreate = true

	_, err := f.engine.CreateSession(context.Background(), "Frank")
	if !errors.Is(err, game.ErrSessionCreationFailed) {
		t.Fatalf("expected session creation failed, got %v", err)
	}
	if !errors.Is(err, errStorage) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
	if !game.KindOf(err).Retryable() {
		t.Fatal("creation failure must be retryable")
	}
}

func TestPlayerNames(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	snap, err := f.engine.CreateSession(ctx, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if snap.PlayerName != game.DefaultPlayerName {
		t.Fatalf("expected guest name, got %q", snap.PlayerName)
	}

	if _, err := f.engine.CreateSession(ctx, "ゆうきー 2"); err != nil {
		t.Fatalf("unicode name rejected: %v", err)
	}

	long := make([]rune, game.MaxPlayerNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	for _, name := range []string{string(long), "bob;drop", "<b>"} {
		if _, err := f.engine.CreateSession(ctx, name); !errors.Is(err, game.ErrInvalidPlayerName) {
			t.Fatalf("%q: expected invalid player name, got %v", name, err)
		}
	}
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.engine.GetState(context.Background(), "missing"); !errors.Is(err, game.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestResumeAfterFailedFinish(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Gina")
	if err != nil {
		t.Fatal(err)
	}

	f.flaky.failFinish = true
	if _, err := f.engine.SubmitWord(ctx, snap.SessionID, "each"); !errors.Is(err, errStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	state, err := f.engine.GetState(ctx, snap.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if state.Phase != game.PhaseOpponentTurn {
		t.Fatalf("expected opponent_turn after partial failure, got %s", state.Phase)
	}
	if _, err := f.engine.SubmitWord(ctx, snap.SessionID, "hash"); !errors.Is(err, game.ErrWrongTurnState) {
		t.Fatalf("expected wrong turn state, got %v", err)
	}

	f.flaky.failFinish = false
	out, err := f.engine.ResumeOpponent(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !out.Surrendered || !out.Ended || out.Summary.Reason != game.EndOpponentExhausted {
		t.Fatalf("unexpected resume outcome %+v", out)
	}
}

func TestResumeOpponentPlaysPendingTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	snap, err := f.engine.CreateSession(ctx, "Hank")
	if err != nil {
		t.Fatal(err)
	}
	pending := game.Turn{Number: 1, Word: "ruby", Speaker: game.SpeakerHuman, PlayedAt: f.clock.Now()}
	if err := f.mem.Append(ctx, snap.SessionID, pending); err != nil {
		t.Fatal(err)
	}

	out, err := f.engine.ResumeOpponent(ctx, snap.SessionID)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if out.OpponentReply != "yield" || out.Snapshot.Phase != game.PhaseHumanTurn {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if _, err := f.engine.ResumeOpponent(ctx, snap.SessionID); !errors.Is(err, game.ErrWrongTurnState) {
		t.Fatalf("expected wrong turn state on second resume, got %v", err)
	}
}

func TestSeededPickerIsDeterministic(t *testing.T) {
	a, b := game.NewSeededPicker(42), game.NewSeededPicker(42)
	for i := 0; i < 20; i++ {
		if x, y := a.IntN(1000), b.IntN(1000); x != y {
			t.Fatalf("draw %d: %d != %d", i, x, y)
		}
	}
	r := game.NewRandomPicker()
	for i := 0; i < 100; i++ {
		if n := r.IntN(3); n < 0 || n >= 3 {
			t.Fatalf("out of range: %d", n)
		}
	}
}
