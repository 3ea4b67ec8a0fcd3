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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ShowVisibility(ctx context.Context) error
	SetVisibility(ctx context.Context, setting string, enabled bool) error
	SetAvatar(ctx context.Context, url string) error
	ChangeEmail(ctx context.Context) error
	Activate(ctx context.Context) error
	Status(ctx context.Context) error
	Open(ctx context.Context, path string) error
	Notifications(ctx context.Context) error
	Sound(ctx context.Context, enabled bool) error
	Reset(ctx context.Context) error
}

// runREPL reads a line from the provided scanner, parses the first token as
// the command, and dispatches to methods on 'a'. Unknown commands are
// reported back to the user. The loop exits on scanner EOF or when the user
// types "exit" or "quit".
//
// Errors returned by command handlers are printed and swallowed so a failed
// command never kills the loop.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("rycus %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		args := parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, edit, avatar [url], visibility [public|search on|off], change-email, activate, status, open <path>, notifications, sound on|off, reset, logout, exit")
			} else {
				printlnFn("Available commands: register, login, open <path>, exit")
			}

		case "register":
			err = a.Register(ctx)

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.Whoami(ctx)

		case "edit":
			err = a.EditProfile(ctx)

		case "avatar":
			url := ""
			if len(args) > 0 {
				url = args[0]
			}
			err = a.SetAvatar(ctx, url)

		case "visibility":
			switch {
			case len(args) == 0:
				err = a.ShowVisibility(ctx)
			case len(args) == 2 && (args[0] == "public" || args[0] == "search") && (args[1] == "on" || args[1] == "off"):
				err = a.SetVisibility(ctx, args[0], args[1] == "on")
			default:
				printlnFn("Usage: visibility [public|search on|off]")
				continue
			}

		case "change-email":
			err = a.ChangeEmail(ctx)

		case "activate":
			err = a.Activate(ctx)

		case "status":
			err = a.Status(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <path>")
				continue
			}
			err = a.Open(ctx, args[0])

		case "notifications", "n":
			err = a.Notifications(ctx)

		case "sound":
			if len(args) == 0 || (args[0] != "on" && args[0] != "off") {
				printlnFn("Usage: sound on|off")
				continue
			}
			err = a.Sound(ctx, args[0] == "on")

		case "reset":
			err = a.Reset(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err.Error())
		}
	}
}
