package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/babeledit/internal/client/client"
	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	fail  map[string]error
}

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.fail[name]
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error  { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Whoami(context.Context) error { return f.record("whoami") }
func (f *fakeExec) Products(_ context.Context, args []string) error {
	return f.record("products", args...)
}
func (f *fakeExec) Product(_ context.Context, args []string) error {
	return f.record("product", args...)
}
func (f *fakeExec) Get(_ context.Context, args []string) error { return f.record("get", args...) }
func (f *fakeExec) Upload(_ context.Context, args []string) error {
	return f.record("upload", args...)
}
func (f *fakeExec) Health(context.Context) error { return f.record("health") }
func (f *fakeExec) Bench(_ context.Context, args []string) error {
	return f.record("bench", args...)
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"products silk dress",
		"product p1",
		"get /orders",
		"upload look.png",
		"whoami",
		"health",
		"bench 10 /wishlist",
		"foobar",
		"logout",
		"exit",
		"products never-reached",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(status)" }, bufio.NewScanner(input))

	assert.Equal(t, []string{
		"login",
		"products silk dress",
		"product p1",
		"get /orders",
		"upload look.png",
		"whoami",
		"health",
		"bench 10 /wishlist",
		"logout",
	}, exec.calls)

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Available commands: register, login")
	assert.Contains(t, joined, "Available commands: whoami")
	assert.Contains(t, joined, "Unknown command: foobar")
	assert.Contains(t, joined, "babel (status)> ")
	assert.Contains(t, joined, "Bye!")
}

func TestRunREPL_PrintsCommandErrors(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{fail: map[string]error{
		"whoami": client.ErrNoToken,
		"get":    client.ErrSessionExpired,
		"health": client.ErrUnavailable,
	}}
	input := strings.NewReader("whoami\nget /orders\nhealth\n")

	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(input))

	assert.Contains(t, *out, "Please log in first.")
	assert.Contains(t, *out, "Your session has expired, please log in again.")
	assert.Contains(t, *out, "Cannot reach the server, check your connection and try again.")
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("login\n")))

	assert.Empty(t, exec.calls)
}
