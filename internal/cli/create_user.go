package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mrlokans/library-catalog/internal/auth"
	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database/users"
)

// CreateUserCommand registers an account without going through the web form.
type CreateUserCommand struct {
	Username     string
	Email        string
	Password     string
	DatabasePath string

	cfg          *config.Config
	out          io.Writer
	readPassword func() (string, error)
}

func NewCreateUserCommand() *CreateUserCommand {
	return &CreateUserCommand{
		cfg:          config.NewConfig(),
		out:          os.Stdout,
		readPassword: promptPassword,
	}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username of the new account (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email of the new account (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password; prompted for when omitted")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to a sqlite catalog database (defaults to DATABASE_* settings)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account in the catalog database.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Username == "" {
		return fmt.Errorf("required flag -username not provided")
	}
	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	password := cmd.Password
	if password == "" {
		var err error
		password, err = cmd.readPassword()
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	db, err := openDatabase(cmd.cfg.Database, cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	service := auth.NewService(users.NewRepository(db.DB), cmd.cfg.Auth)
	user, err := service.Register(cmd.Username, cmd.Email, password)
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			return fmt.Errorf("user %q or email %q already registered", cmd.Username, cmd.Email)
		}
		return err
	}

	fmt.Fprintf(cmd.out, "Created user %s (id %d)\n", user.Username, user.ID)
	return nil
}

// promptPassword reads the password twice from the terminal without echo.
func promptPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal, pass -password")
	}

	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), nil
}
