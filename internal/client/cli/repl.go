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
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Products(ctx context.Context, args []string) error
	Product(ctx context.Context, args []string) error
	Get(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	Health(ctx context.Context) error
	Bench(ctx context.Context, args []string) error
}

// runREPL starts a simple read–eval–print loop for the Babel Edit CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Errors returned by a command are printed and the loop goes on. The loop
// exits on scanner EOF, on ctx cancellation, or when the user types "exit"
// or "quit".
//
// Commands
//
//	Not logged in:
//	  - help                   show available commands
//	  - register               create an account
//	  - login                  authenticate
//
//	Logged in:
//	  - whoami                 show the session and profile
//	  - upload <file>          upload an image (admins)
//	  - logout                 log out
//
//	Always:
//	  - products [search]      list products (alias: ls)
//	  - product <id>           show a product
//	  - get <path>             GET any endpoint and print the JSON
//	  - health                 probe the server now
//	  - bench <n> <path>       n concurrent GETs
//	  - exit | quit            leave the program
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("babel %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, products [search], product <id>, get <path>, upload <file>, health, bench <n> <path>, logout, exit")
			} else {
				printlnFn("Available commands: register, login, products [search], product <id>, get <path>, health, bench <n> <path>, exit")
			}

		case "register":
			err = a.Register(ctx)
		case "login":
			err = a.Login(ctx)
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.Whoami(ctx)
		case "products", "ls":
			err = a.Products(ctx, args)
		case "product":
			err = a.Product(ctx, args)
		case "get":
			err = a.Get(ctx, args)
		case "upload":
			err = a.Upload(ctx, args)
		case "health":
			err = a.Health(ctx)
		case "bench":
			err = a.Bench(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(describeError(err))
		}
	}
}
