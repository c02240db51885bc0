package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool
	atGate   bool

	calls []string
}

func (f *fakeExec) record(name string) error {
	f.calls = append(f.calls, name)
	return nil
}

func (f *fakeExec) isLoggedIn() bool        { return f.loggedIn }
func (f *fakeExec) needsVerification() bool { return f.atGate }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.atGate = true
	return f.record("login")
}
func (f *fakeExec) Verify(ctx context.Context) error { return f.record("verify") }
func (f *fakeExec) Confirm(ctx context.Context) error {
	return f.record("confirm")
}
func (f *fakeExec) Skip(ctx context.Context) error {
	f.atGate = false
	f.loggedIn = true
	return f.record("skip")
}
func (f *fakeExec) Trips(ctx context.Context) error      { return f.record("trips") }
func (f *fakeExec) AddTrip(ctx context.Context) error    { return f.record("addtrip") }
func (f *fakeExec) DeleteTrip(ctx context.Context) error { return f.record("deltrip") }
func (f *fakeExec) ShareTrip(ctx context.Context) error  { return f.record("share") }
func (f *fakeExec) AddLocation(ctx context.Context) error {
	return f.record("addloc")
}
func (f *fakeExec) DeleteLocation(ctx context.Context) error {
	return f.record("delloc")
}
func (f *fakeExec) AddFlight(ctx context.Context) error { return f.record("addflight") }
func (f *fakeExec) Attach(ctx context.Context) error    { return f.record("attach") }
func (f *fakeExec) Download(ctx context.Context) error  { return f.record("download") }
func (f *fakeExec) Feed(ctx context.Context) error      { return f.record("feed") }
func (f *fakeExec) MarkRead(ctx context.Context) error  { return f.record("read") }
func (f *fakeExec) ClearFeed(ctx context.Context) error { return f.record("clearfeed") }
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}

func TestRunREPL_GateFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"verify",
		"skip",
		"help",
		"addtrip",
		"trips",
		"feed",
		"foobar",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantOrder := []string{"login", "verify", "skip", "addtrip", "trips", "feed"}
	idx := 0
	for _, c := range exec.calls {
		if idx < len(wantOrder) && c == wantOrder[idx] {
			idx++
		}
	}
	if idx != len(wantOrder) {
		t.Fatalf("commands order mismatch: got %v, want subseq %v", exec.calls, wantOrder)
	}
}

func TestRunREPL_EmptyLinesAndQuit(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("\n   \nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}

func TestRunREPL_ShortAliases(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("t\nexit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "" }, sc)

	if len(exec.calls) != 1 || exec.calls[0] != "trips" {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
