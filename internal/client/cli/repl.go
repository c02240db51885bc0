package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	needsVerification() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Verify(ctx context.Context) error
	Confirm(ctx context.Context) error
	Skip(ctx context.Context) error
	Trips(ctx context.Context) error
	AddTrip(ctx context.Context) error
	DeleteTrip(ctx context.Context) error
	ShareTrip(ctx context.Context) error
	AddLocation(ctx context.Context) error
	DeleteLocation(ctx context.Context) error
	AddFlight(ctx context.Context) error
	Attach(ctx context.Context) error
	Download(ctx context.Context) error
	Feed(ctx context.Context) error
	MarkRead(ctx context.Context) error
	ClearFeed(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the TripKeeper CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// The available command set follows session state: signed out, signed in
// but held at the verification gate, or fully authenticated. Command
// handlers prompt interactively for their inputs.
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("tk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn():
				printlnFn("Available commands: (t)rips, addtrip, deltrip, share, addloc, delloc, addflight, attach, download, feed, read, clearfeed, logout, exit")
			case a.needsVerification():
				printlnFn("Please verify your email. Available commands: verify, confirm, skip, logout, exit")
			default:
				printlnFn("Available commands: register, login, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "confirm":
			_ = a.Confirm(ctx)

		case "skip":
			_ = a.Skip(ctx)

		case "t", "trips":
			_ = a.Trips(ctx)

		case "addtrip":
			_ = a.AddTrip(ctx)

		case "deltrip":
			_ = a.DeleteTrip(ctx)

		case "share":
			_ = a.ShareTrip(ctx)

		case "addloc":
			_ = a.AddLocation(ctx)

		case "delloc":
			_ = a.DeleteLocation(ctx)

		case "addflight":
			_ = a.AddFlight(ctx)

		case "attach":
			_ = a.Attach(ctx)

		case "download":
			_ = a.Download(ctx)

		case "feed":
			_ = a.Feed(ctx)

		case "read":
			_ = a.MarkRead(ctx)

		case "clearfeed":
			_ = a.ClearFeed(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
