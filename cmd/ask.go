package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/faust-ai/faust/internal/tui"
	"github.com/faust-ai/faust/internal/tutor"
)

func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a single question non-interactively",
		Example: `  faust ask "integrate x^2 from 0 to 1"
  faust ask --level child "why is a negative times a negative positive?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(strings.Join(args, " "))
		},
	}
}

// runAsk answers one question in the "ask" session and exits.
func runAsk(question string) error {
	cfg := initConfig()

	p, err := buildProvider(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Model == "" {
		cfg.Model = p.DefaultModel()
	}

	store, users, err := openStores(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer store.Close()

	user, err := resolveUser(users)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// One-shot questions share a dedicated session so follow-ups keep
	// their context across invocations.
	sessionFlag = "ask"
	sess, err := openSession(cfg, store, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ui := tui.NewPlainIO()
	t := tutor.New(p, cfg, users, store, user, sess, ui)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return t.RunOnce(ctx, question)
}
