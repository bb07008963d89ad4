package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context) error {
	return f.record("register", nil)
}
func (f *fakeExec) Login(ctx context.Context) error {
	f.loggedIn = true
	return f.record("login", nil)
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout", nil)
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami", nil) }
func (f *fakeExec) Users(ctx context.Context) error  { return f.record("users", nil) }
func (f *fakeExec) Select(ctx context.Context, args []string) error {
	return f.record("select", args)
}
func (f *fakeExec) Send(ctx context.Context, args []string) error {
	return f.record("send", args)
}
func (f *fakeExec) Inbox(ctx context.Context) error { return f.record("inbox", nil) }
func (f *fakeExec) Open(ctx context.Context, args []string) error {
	return f.record("open", args)
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"users",
		"select bob",
		"send hello there",
		"inbox",
		"open bob",
		"whoami",
		"foobar",
		"logout",
		"exit",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewScanner(input))

	want := []string{"login", "users", "select", "send", "inbox", "open", "whoami", "logout"}
	if len(exec.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	for i := range want {
		if exec.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q (all: %v)", i, exec.calls[i], want[i], exec.calls)
		}
	}

	// Arguments after the command name reach the handler intact.
	if got := exec.args[4]; len(got) != 2 || got[0] != "hello" || got[1] != "there" {
		t.Fatalf("send args = %v", got)
	}
	if got := exec.args[5]; len(got) != 1 || got[0] != "bob" {
		t.Fatalf("open args = %v", got)
	}
}

func TestRunREPL_AliasesAndEOF(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("u\ni\n") // EOF without exit
	exec := &fakeExec{loggedIn: true}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	if len(exec.calls) != 2 || exec.calls[0] != "users" || exec.calls[1] != "inbox" {
		t.Fatalf("calls = %v", exec.calls)
	}
}

func TestRunREPL_HandlerErrorsAreReportedNotFatal(t *testing.T) {
	var printed []string
	origPrint := printlnFn
	printlnFn = func(args ...any) (int, error) {
		printed = append(printed, fmt.Sprintln(args...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })

	exec := &fakeExec{loggedIn: true, err: errors.New("server unavailable")}
	input := strings.NewReader("inbox\nexit\n")
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	found := false
	for _, line := range printed {
		if strings.Contains(line, "server unavailable") {
			found = true
		}
	}
	if !found {
		t.Fatalf("handler error not reported, printed: %v", printed)
	}
	if len(exec.calls) != 1 || exec.calls[0] != "inbox" {
		t.Fatalf("loop did not continue past the error: %v", exec.calls)
	}
}
