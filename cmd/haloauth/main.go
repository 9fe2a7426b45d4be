package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-haloinfinite/config"
	"github.com/jrsteele09/go-haloinfinite/halo"
	"github.com/jrsteele09/go-haloinfinite/internal/callback"
	ierrors "github.com/jrsteele09/go-haloinfinite/internal/errors"
	"github.com/jrsteele09/go-haloinfinite/token"
	"github.com/jrsteele09/go-haloinfinite/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage:
  haloauth url            print the Microsoft account sign-in URL
  haloauth login          sign in through the browser and walk the token chain
  haloauth login <code>   exchange a code copied from the redirect URI instead`

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("haloauth failed")
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("godotenv.Load: %w", err)
	}

	c := config.New()
	setupLogging(c.GetLogLevel())
	displayAppname(c.GetAppName())

	if len(args) == 0 {
		fmt.Println(usage)
		return nil
	}

	client, err := halo.NewClient(config.CredentialsFrom(c),
		halo.WithEndpoints(c.GetEndpoints()),
		halo.WithTransport(transport.New(
			transport.WithTimeout(c.GetHTTPTimeout()),
			transport.WithUserAgent(c.GetAppName()),
		)),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch args[0] {
	case "url":
		fmt.Println(client.Auth.AuthorizationURL(c.GetRedirectURI(), nil, client.Auth.NewState()))
		return nil
	case "login":
		code := ""
		if len(args) > 1 {
			code = args[1]
		} else if code, err = awaitCode(ctx, client, c.GetRedirectURI()); err != nil {
			return err
		}
		if err := signIn(ctx, client, c.GetRedirectURI(), code); err != nil {
			return err
		}
		return printSummary(ctx, client)
	default:
		fmt.Println(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// awaitCode prints a sign-in URL and serves the redirect URI locally until the
// browser comes back with a code.
func awaitCode(ctx context.Context, client *halo.Client, redirectURI string) (string, error) {
	states := callback.NewInMemoryStateRepo()
	listener, err := callback.NewListener(redirectURI, states)
	if err != nil {
		return "", err
	}

	state := client.Auth.NewState()
	if err := states.Upsert(state, &callback.PendingSignIn{RedirectURI: redirectURI, CreatedAt: time.Now()}); err != nil {
		return "", err
	}
	fmt.Println("Open this URL to sign in:")
	fmt.Println(client.Auth.AuthorizationURL(redirectURI, nil, state))

	res, err := listener.Serve(ctx)
	if err != nil {
		return "", ierrors.Wrapf(err, "wait for sign-in")
	}
	return res.Code, nil
}

// signIn walks every hop in order, storing each token before the next
// hop needs it.
func signIn(ctx context.Context, client *halo.Client, redirectURI, code string) error {
	store := client.Tokens()

	resp, err := client.Auth.ExchangeCode(ctx, redirectURI, code)
	if err != nil {
		return ierrors.Wrapf(err, "exchange code")
	}
	if err := decodeInto(resp, token.UserSlot, store.SetUserToken); err != nil {
		return err
	}

	steps := []func(context.Context) error{
		step(client.Auth.AcquireXboxUserToken, token.XboxUserSlot, store.SetXboxUserToken),
		step(client.Auth.AcquireXstsXboxToken, token.XstsXboxSlot, store.SetXstsXboxToken),
		step(client.Auth.AcquireXstsHaloToken, token.XstsHaloSlot, store.SetXstsHaloToken),
		step(client.Auth.AcquireSpartanToken, token.SpartanSlot, store.SetSpartanToken),
		step(client.Auth.AcquireClearanceToken, token.ClearanceSlot, store.SetClearanceToken),
	}
	for _, s := range steps {
		if err := s(ctx); err != nil {
			return err
		}
	}
	return nil
}

func step[T any](call func(context.Context) (*transport.Response, error), slot token.Slot, set func(T)) func(context.Context) error {
	return func(ctx context.Context) error {
		resp, err := call(ctx)
		if err != nil {
			return ierrors.Wrapf(err, "acquire %s", slot)
		}
		return decodeInto(resp, slot, set)
	}
}

func decodeInto[T any](resp *transport.Response, slot token.Slot, set func(T)) error {
	var v T
	if err := resp.Decode(&v); err != nil {
		return ierrors.Wrapf(err, "decode %s", slot)
	}
	set(v)
	log.Info().Str("token", slot.String()).Msg("token acquired")
	return nil
}

func printSummary(ctx context.Context, client *halo.Client) error {
	store := client.Tokens()
	xuid, err := store.XboxUserID()
	if err != nil {
		return err
	}
	clearance, err := store.ClearanceToken()
	if err != nil {
		return err
	}
	fmt.Printf("xuid:      %s\n", xuid)
	fmt.Printf("clearance: %s\n", clearance.ClearanceID())

	count, err := client.Match.Count(ctx)
	if err != nil {
		return ierrors.Wrapf(err, "match count")
	}
	fmt.Printf("matches:   %s\n", count.Raw)
	return nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
