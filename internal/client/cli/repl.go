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
	Render()

	Register(ctx context.Context, pro bool) error
	Login(ctx context.Context) error
	LoginWithGoogle(ctx context.Context, idToken string) error
	Logout(ctx context.Context) error
	Photo(ctx context.Context, path string) error

	Open(ctx context.Context, route string) error
	Menu(ctx context.Context) error
	Notify(ctx context.Context) error
	Tap(ctx context.Context, action string) error
	Scrim(ctx context.Context) error
	Resize(ctx context.Context, width string) error
	Refresh(ctx context.Context) error

	Filter(ctx context.Context, kind string) error
	Range(ctx context.Context, start, end string) error
	AddNote(ctx context.Context) error
	TapNote(ctx context.Context, verb, id string) error
}

const (
	helpSignedOut = "Available commands: register [--pro], login, google <id_token>, tap <action>, resize <width>, exit"
	helpSignedIn  = "Available commands: home, notes, open <route>, menu, notify, filter <all|today|week|month|custom>, " +
		"range <start> <end>, addnote, edit <id>, delete <id>, show <id>, tap <action>, scrim, resize <width>, " +
		"photo <file>, refresh, logout, exit"
)

// runREPL starts a simple read–eval–print loop for the Mindful+ client.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands and missing arguments are
// reported back to the user, as are command errors. The screen is redrawn
// after every command. The loop exits on EOF or when the user types "exit"
// or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mindful> %s > ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		need := func(n int, usage string) bool {
			if len(args) < n {
				printlnFn("Usage:", usage)
				return false
			}
			return true
		}

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}
			continue

		case "register":
			cmdErr = a.Register(ctx, len(args) > 0 && args[0] == "--pro")

		case "login":
			cmdErr = a.Login(ctx)

		case "google":
			if !need(1, "google <id_token>") {
				continue
			}
			cmdErr = a.LoginWithGoogle(ctx, args[0])

		case "logout":
			cmdErr = a.Logout(ctx)

		case "photo":
			if !need(1, "photo <file>") {
				continue
			}
			cmdErr = a.Photo(ctx, args[0])

		case "home", "notes":
			cmdErr = a.Open(ctx, "/"+cmd)

		case "open":
			if !need(1, "open <route>") {
				continue
			}
			cmdErr = a.Open(ctx, args[0])

		case "menu":
			cmdErr = a.Menu(ctx)

		case "notify":
			cmdErr = a.Notify(ctx)

		case "tap":
			if !need(1, "tap <action>") {
				continue
			}
			cmdErr = a.Tap(ctx, args[0])

		case "scrim":
			cmdErr = a.Scrim(ctx)

		case "resize":
			if !need(1, "resize <width>") {
				continue
			}
			cmdErr = a.Resize(ctx, args[0])

		case "refresh", "r":
			cmdErr = a.Refresh(ctx)

		case "filter":
			if !need(1, "filter <all|today|week|month|custom>") {
				continue
			}
			cmdErr = a.Filter(ctx, args[0])

		case "range":
			if !need(2, "range <start> <end>") {
				continue
			}
			cmdErr = a.Range(ctx, args[0], args[1])

		case "addnote":
			cmdErr = a.AddNote(ctx)

		case "edit", "delete":
			if !need(1, cmd+" <id>") {
				continue
			}
			cmdErr = a.TapNote(ctx, cmd, args[0])

		case "show":
			if !need(1, "show <id>") {
				continue
			}
			cmdErr = a.TapNote(ctx, "view", args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
		a.Render()
	}
}
