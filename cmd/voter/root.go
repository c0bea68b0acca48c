// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/danielhkuo/condo-vote/firstrun"
	"github.com/danielhkuo/condo-vote/votingapi"
	"github.com/danielhkuo/condo-vote/wizard"
)

const defaultAPIURL = "http://localhost:3318"

// errReported means the user already saw a message; main only sets the
// exit code
var errReported = errors.New("reported")

// stdinIsTerminal is replaced in tests
var stdinIsTerminal = func(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type voterFlags struct {
	apiURL      string
	timeout     time.Duration
	stateDir    string
	noState     bool
	verbose     bool
	votes       []string
	acceptTerms bool
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var flags voterFlags

	cmd := &cobra.Command{
		Use:   "voter <token or vote link>",
		Short: "Vote in a building assembly using your personal vote-by-email link",
		Long: `voter fetches the ballot behind your personal link and walks you through
selecting, reviewing and submitting your votes.

Without --vote it runs interactively and needs a terminal. With --vote it
submits the given choices directly; --accept-terms is then required.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRun: func(c *cobra.Command, args []string) {
			// Missing .env is normal; real environment wins
			_ = godotenv.Load()
			if !c.Flags().Changed("api") {
				if v := os.Getenv("VOTER_API_URL"); v != "" {
					flags.apiURL = v
				}
			}
		},
		RunE: func(c *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt)
			defer stop()
			return runVoter(ctx, flags, args[0], in, out, errOut)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&flags.apiURL, "api", defaultAPIURL, "Voting server base URL (env VOTER_API_URL)")
	fs.DurationVar(&flags.timeout, "timeout", 15*time.Second, "Timeout for each request")
	fs.StringVar(&flags.stateDir, "state-dir", defaultStateDir(), "Directory for local voter state")
	fs.BoolVar(&flags.noState, "no-state", false, "Do not read or write local state")
	fs.BoolVarP(&flags.verbose, "verbose", "v", false, "Log requests to stderr")
	fs.StringArrayVar(&flags.votes, "vote", nil, "Non-interactive choice as <item>=<approve|reject|abstain>; repeatable")
	fs.BoolVar(&flags.acceptTerms, "accept-terms", false, "Accept the terms of use (non-interactive mode)")

	return cmd
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".condo-vote"
	}
	return filepath.Join(dir, "condo-vote")
}

func runVoter(ctx context.Context, flags voterFlags, arg string, in io.Reader, out, errOut io.Writer) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if flags.verbose {
		logger = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	interactive := len(flags.votes) == 0
	if interactive && !stdinIsTerminal(in) {
		return errors.New("stdin is not a terminal; use --vote and --accept-terms")
	}

	token, err := tokenFromArg(arg)
	if err != nil {
		return err
	}

	if firstLaunch(flags, logger) {
		printIntro(out)
	}

	client := votingapi.New(flags.apiURL, flags.timeout)
	session, err := wizard.Resolve(ctx, client, token,
		wizard.WithTimeout(flags.timeout),
		wizard.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(errOut, wizard.UserMessage(err))
		return errReported
	}

	printBallot(out, session.Ballot())

	if interactive {
		err = runInteractive(ctx, session, in, out)
	} else {
		err = runScripted(ctx, session, flags.votes, flags.acceptTerms)
	}
	if err != nil {
		if errors.Is(err, errAborted) {
			fmt.Fprintln(out, "Η ψηφοφορία διακόπηκε χωρίς αποστολή.")
			return errReported
		}
		fmt.Fprintln(errOut, wizard.UserMessage(err))
		return errReported
	}

	printReceipt(out, session.VotesRecorded())
	return nil
}

// firstLaunch reports whether the intro has never been shown from this
// state dir, and records that it now has
func firstLaunch(flags voterFlags, logger *slog.Logger) bool {
	var flag firstrun.Flag = &firstrun.MemoryFlag{}
	if !flags.noState {
		store, err := firstrun.Open(flags.stateDir)
		if err != nil {
			logger.Warn("state dir unavailable, intro state not kept", "error", err, "dir", flags.stateDir)
		} else {
			defer store.Close()
			flag = store.Flag(firstrun.IntroShownKey)
		}
	}

	first, err := firstrun.Once(flag)
	if err != nil {
		logger.Warn("first-run flag unavailable", "error", err)
	}
	return first
}

// tokenFromArg accepts a bare token or a full vote link
func tokenFromArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", errors.New("token is empty")
	}
	if !strings.Contains(arg, "://") {
		return arg, nil
	}

	u, err := url.Parse(arg)
	if err != nil {
		return "", fmt.Errorf("invalid vote link: %w", err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[len(parts)-2] != "vote-by-email" || parts[len(parts)-1] == "" {
		return "", fmt.Errorf("link %q is not a vote-by-email link", arg)
	}
	return parts[len(parts)-1], nil
}
