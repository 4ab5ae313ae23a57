package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/plaquekeeper/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

const (
	msgLoginFirst = "Veuillez vous connecter d'abord (tapez 'help')."
	msgRestricted = "Accès restreint: commande réservée aux administrateurs."
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool

	Login(ctx context.Context) error
	Register(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	ListUsers(ctx context.Context) error
	AddUser(ctx context.Context) error
	EditUser(ctx context.Context) error
	DeleteUser(ctx context.Context) error

	ListPlaques(ctx context.Context) error
	AddPlaque(ctx context.Context) error
	EditPlaque(ctx context.Context) error
	DeletePlaque(ctx context.Context) error
	ShowPlaque(ctx context.Context) error
	GeneratePlate(ctx context.Context) error
	ExportQR(ctx context.Context) error

	Stats(ctx context.Context) error
	Metrics(ctx context.Context) error
	ToggleDarkMode(ctx context.Context) error
}

// lineSource yields command lines. *bufio.Scanner satisfies it.
type lineSource interface {
	Scan() bool
	Text() string
}

// readerLines reads lines from the same buffered reader the prompts use, so
// command lines and prompt answers never race for buffered input.
type readerLines struct {
	r    *bufio.Reader
	line string
}

func (l *readerLines) Scan() bool {
	line, err := l.r.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	l.line = strings.TrimRight(line, "\r\n")
	return true
}

func (l *readerLines) Text() string { return l.line }

type access int

const (
	anyone access = iota
	signedIn
	adminOnly
)

type command struct {
	access access
	run    func(execIface, context.Context) error
}

var commands = map[string]command{
	"login":    {anyone, execIface.Login},
	"register": {anyone, execIface.Register},

	"logout": {signedIn, execIface.Logout},
	"whoami": {signedIn, execIface.WhoAmI},

	"users":    {adminOnly, execIface.ListUsers},
	"adduser":  {adminOnly, execIface.AddUser},
	"edituser": {adminOnly, execIface.EditUser},
	"deluser":  {adminOnly, execIface.DeleteUser},

	"plaques":    {signedIn, execIface.ListPlaques},
	"addplaque":  {signedIn, execIface.AddPlaque},
	"editplaque": {signedIn, execIface.EditPlaque},
	"delplaque":  {signedIn, execIface.DeletePlaque},
	"showplaque": {signedIn, execIface.ShowPlaque},
	"plate":      {signedIn, execIface.GeneratePlate},
	"exportqr":   {signedIn, execIface.ExportQR},

	"stats":    {signedIn, execIface.Stats},
	"metrics":  {signedIn, execIface.Metrics},
	"darkmode": {signedIn, execIface.ToggleDarkMode},
}

// authorize reports whether the current session may run c:
// common.ErrNotAuthenticated when nobody is signed in, common.ErrForbidden
// when c is reserved to administrators.
func authorize(a execIface, c command) error {
	switch {
	case c.access >= signedIn && !a.isLoggedIn():
		return common.ErrNotAuthenticated
	case c.access == adminOnly && !a.isAdmin():
		return common.ErrForbidden
	}
	return nil
}

func denialMessage(err error) string {
	if errors.Is(err, common.ErrForbidden) {
		return msgRestricted
	}
	return msgLoginFirst
}

func helpText(a execIface) string {
	switch {
	case a.isAdmin():
		return "Available commands: whoami, plaques, addplaque, editplaque, delplaque, showplaque, plate, exportqr, " +
			"users, adduser, edituser, deluser, stats, metrics, darkmode, logout, exit"
	case a.isLoggedIn():
		return "Available commands: whoami, plaques, addplaque, editplaque, delplaque, showplaque, plate, exportqr, " +
			"stats, metrics, darkmode, logout, exit"
	default:
		return "Available commands: login, register, exit"
	}
}

// runREPL starts the read–eval–print loop.
//
// It reads a line from the provided scanner, parses the first token as the
// command, checks the caller may run it and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF, on context cancellation or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers report
// and log their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner lineSource) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("plaques %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd := strings.ToLower(parts[0])

		switch cmd {
		case "help":
			printlnFn(helpText(a))
			continue
		case "exit", "quit":
			printlnFn("Au revoir !")
			return
		}

		c, ok := commands[cmd]
		if !ok {
			printlnFn("Unknown command:", cmd)
			continue
		}
		if err := authorize(a, c); err != nil {
			printlnFn(denialMessage(err))
			continue
		}
		_ = c.run(a, ctx)
	}
}
