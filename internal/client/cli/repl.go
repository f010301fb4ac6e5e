package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies it;
// tests use a recording stub.
type execIface interface {
	isLoggedIn() bool
	SignUp(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Forgot(ctx context.Context) error
	Resend(ctx context.Context) error
	Verify(ctx context.Context) error
	Show(ctx context.Context, route models.Route) error
	Back(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: signup, login, forgot, resend, verify, home, profile, back, exit"
	helpLoggedIn  = "Available commands: profile, feed, plan, guide, home, back, logout, exit"
)

// runREPL reads one command per line from reader and dispatches it to a
// until EOF, "exit" or "quit". The prompt carries statusFn's text.
//
// Handlers print their own notices, so errors they return are dropped here
// and the loop keeps going.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("tz %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		if route, ok := routeFor(cmd); ok {
			_ = a.Show(ctx, route)
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}

		case "signup", "register":
			_ = a.SignUp(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "resend":
			_ = a.Resend(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "back":
			_ = a.Back(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if ctx.Err() != nil {
			return
		}
	}
}
