package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-indicator-client/app"
	"github.com/jrsteele09/go-indicator-client/internal/config"
	"github.com/jrsteele09/go-indicator-client/internal/utils"
	"github.com/jrsteele09/go-indicator-client/navigation"
	"github.com/jrsteele09/go-indicator-client/session"
	"github.com/jrsteele09/go-indicator-client/session/storage"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error running client: %s\n", err)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	if c.GetEnv() == "DEV" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	storageRepo, err := storage.NewFileRepo(c.GetDataFolder())
	if err != nil {
		return fmt.Errorf("opening session storage: %w", err)
	}

	application, err := app.New(c, storageRepo, consoleNotifier{})
	if err != nil {
		return fmt.Errorf("building application: %w", err)
	}

	ctx := context.Background()

	authenticated, err := application.Start(ctx)
	if err != nil {
		return fmt.Errorf("starting application: %w", err)
	}

	if !authenticated {
		email := os.Getenv("LOGIN_EMAIL")
		password := os.Getenv("LOGIN_PASSWORD")
		if email == "" || password == "" {
			return errors.New("no persisted session: set LOGIN_EMAIL and LOGIN_PASSWORD")
		}
		if err := application.SignIn(ctx, email, password); err != nil {
			return fmt.Errorf("signing in: %w", err)
		}
	}

	// Current can go nil again if a call expired the session mid-start.
	identity := utils.Value(application.Sessions().Current())
	fmt.Printf("Signed in as %s (%s, unit %s)\n", identity.DisplayName, identity.Role, identity.Unit)
	fmt.Printf("Active screen: %s\n", application.Navigation().Current())
	fmt.Printf("Units loaded: %d\n", len(application.Units()))
	fmt.Printf("Indicators in dictionary: %d\n", len(application.Dictionary()))

	if application.Access().HasRole(session.RoleAdmin) {
		if err := application.Navigation().GoTo(ctx, navigation.ScreenAdminUsers); err != nil {
			return fmt.Errorf("loading admin users: %w", err)
		}
		fmt.Printf("Registered users: %d\n", len(application.AdminUsers()))
	}

	return nil
}

// consoleNotifier prints user-visible notices to stdout; a real UI would
// render a toast instead.
type consoleNotifier struct{}

func (consoleNotifier) Notify(message string) {
	fmt.Printf("! %s\n", message)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
