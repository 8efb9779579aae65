package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context, args []string) error
	Profile(ctx context.Context) error

	Report(ctx context.Context) error
	Dashboard(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Create(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Status(ctx context.Context, args []string) error
	Download(ctx context.Context, args []string) error

	Admin(ctx context.Context, args []string) error
	Role(ctx context.Context, args []string) error
	DeleteUser(ctx context.Context, args []string) error

	Notifications(ctx context.Context) error
	Read(ctx context.Context, args []string) error
	Open(ctx context.Context, args []string) error

	Go(ctx context.Context, args []string) error
	Width(ctx context.Context, args []string) error
	Guide(ctx context.Context, args []string) error
}

const (
	helpAnonymous = `Available commands:
  login                 sign in
  register              create an account
  verify [token]        confirm your email address
  resend [email]        send a new verification email
  report                report an incident anonymously
  go <path>             open a view by path
  width [n]             show or set the viewport width
  exit                  leave the program`

	helpUser = `Available commands:
  dashboard             overview of your incidents
  (l)ist [filter]       incidents; filter by type or status
  show <id>             incident details
  create                report a new incident
  edit <id>             edit an incident
  delete <id>           delete an incident
  download <id>         save the incident attachment
  (n)otifications       show notifications
  read <n>|all          mark notifications as read
  open <n>              open the incident of a notification
  profile               view or update your profile
  help <topic>          help topics
  go <path>             open a view by path
  width [n]             show or set the viewport width
  logout                log out
  exit                  leave the program
Admin:
  admin [users]         admin panel (analytics or users tab)
  status <id> <status>  change incident status
  role <id> <role>      change a user's role
  deluser <id>          delete a user`
)

// runREPL starts a simple read–eval–print loop for the iReporter CLI.
//
// It reads a line from r, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
// Any errors returned by command handlers are ignored here; handlers show
// their own notices. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprintf(w, "ireporter %s> ", statusFn())

		line, err := r.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := strings.ToLower(parts[0]), parts[1:]

		switch cmd {
		case "help", "?":
			if len(args) > 0 {
				_ = a.Guide(ctx, args)
			} else if a.isLoggedIn() {
				fmt.Fprintln(w, helpUser)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)
		case "login":
			_ = a.Login(ctx)
		case "logout":
			_ = a.Logout(ctx)
		case "verify":
			_ = a.Verify(ctx, args)
		case "resend":
			_ = a.Resend(ctx, args)
		case "profile":
			_ = a.Profile(ctx)

		case "report":
			_ = a.Report(ctx)
		case "dashboard", "home":
			_ = a.Dashboard(ctx)
		case "l", "list":
			_ = a.List(ctx, args)
		case "show", "view":
			_ = a.Show(ctx, args)
		case "create", "new":
			_ = a.Create(ctx)
		case "edit":
			_ = a.Edit(ctx, args)
		case "delete", "rm":
			_ = a.Delete(ctx, args)
		case "status":
			_ = a.Status(ctx, args)
		case "download", "dl":
			_ = a.Download(ctx, args)

		case "admin":
			_ = a.Admin(ctx, args)
		case "role":
			_ = a.Role(ctx, args)
		case "deluser":
			_ = a.DeleteUser(ctx, args)

		case "n", "notifications":
			_ = a.Notifications(ctx)
		case "read":
			_ = a.Read(ctx, args)
		case "open":
			_ = a.Open(ctx, args)

		case "go":
			_ = a.Go(ctx, args)
		case "width":
			_ = a.Width(ctx, args)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if err != nil {
			return
		}
	}
}
