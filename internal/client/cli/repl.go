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
	canAuthenticate() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context) error
	Refresh(ctx context.Context) error
	Upload(ctx context.Context, path string) error
	Download(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error

	View(ctx context.Context, id string) error
	CloseView(ctx context.Context) error
	Open(ctx context.Context) error

	Share(ctx context.Context, id string) error
	CopyLink(ctx context.Context) error
	ShareMessaging(ctx context.Context) error
	ShareEmail(ctx context.Context) error
	DismissShare()

	ShowNotice()
}

// shareCommands act on the open share menu; every other command counts as
// an interaction outside it and dismisses the menu.
var shareCommands = map[string]bool{
	"share": true, "copy": true, "whatsapp": true, "email": true,
}

// runREPL starts a simple read-eval-print loop for the CloudVault CLI.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on 'a'. The rest of the line is the argument, so
// paths may contain spaces. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                 - show available commands
//	  - register             - create an account
//	  - login                - authenticate
//	  - exit | quit          - leave the program
//
//	Logged in:
//	  - (l)ist               - show the files
//	  - refresh              - fetch the file list again
//	  - upload <path>        - upload a local file
//	  - download <id>        - save a file into the download directory
//	  - delete <id>          - delete a file (asks for confirmation)
//	  - view <id>            - preview a file
//	  - open                 - open the previewed file in the browser
//	  - close                - close the preview
//	  - share <id>           - open or close the share menu of a file
//	  - copy | whatsapp | email - share the file whose menu is open
//	  - logout               - log out
//	  - exit | quit          - leave the program
//
// Any errors returned by command handlers are ignored here; handlers should
// log their own errors. Outcomes of file operations are reported through
// the session notice, printed after every command.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("cv%s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]
		arg := strings.TrimSpace(strings.TrimPrefix(line, cmd))

		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn():
				printlnFn("Available commands: (l)ist, refresh, upload <path>, download <id>, delete <id>, " +
					"view <id>, open, close, share <id>, copy, whatsapp, email, logout, exit")
			case a.canAuthenticate():
				printlnFn("Available commands: register, login, exit")
			default:
				printlnFn("Available commands: exit")
			}
			continue

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "register":
			_ = a.Register(ctx)
			continue

		case "login":
			_ = a.Login(ctx)
			continue
		}

		if !a.isLoggedIn() {
			if _, known := commandArgs[cmd]; known {
				printlnFn("Please log in first (type 'login').")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		if !shareCommands[cmd] {
			a.DismissShare()
		}

		if usage, known := commandArgs[cmd]; known && usage != "" && arg == "" {
			printlnFn("Usage:", cmd, usage)
			continue
		}

		switch cmd {
		case "l", "list":
			_ = a.List(ctx)
		case "refresh":
			_ = a.Refresh(ctx)
		case "upload":
			_ = a.Upload(ctx, arg)
		case "download":
			_ = a.Download(ctx, arg)
		case "delete":
			_ = a.Delete(ctx, arg)
		case "view":
			_ = a.View(ctx, arg)
		case "open":
			_ = a.Open(ctx)
		case "close":
			_ = a.CloseView(ctx)
		case "share":
			_ = a.Share(ctx, arg)
		case "copy":
			_ = a.CopyLink(ctx)
		case "whatsapp":
			_ = a.ShareMessaging(ctx)
		case "email":
			_ = a.ShareEmail(ctx)
		case "logout":
			_ = a.Logout(ctx)
			continue
		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		a.ShowNotice()
	}
}

// commandArgs lists the logged-in commands with the argument they require.
var commandArgs = map[string]string{
	"l": "", "list": "", "refresh": "", "open": "", "close": "", "logout": "",
	"copy": "", "whatsapp": "", "email": "",
	"upload":   "<path>",
	"download": "<id>",
	"delete":   "<id>",
	"view":     "<id>",
	"share":    "<id>",
}
