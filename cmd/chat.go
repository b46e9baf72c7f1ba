package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/faust-ai/faust/internal/auth"
	"github.com/faust-ai/faust/internal/config"
	"github.com/faust-ai/faust/internal/level"
	"github.com/faust-ai/faust/internal/session"
	"github.com/faust-ai/faust/internal/tui"
	"github.com/faust-ai/faust/internal/tutor"
)

// runChat starts the interactive tutoring (REPL) mode.
func runChat() error {
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

	// Login happens on the plain terminal, before any TUI starts.
	user, err := resolveUser(users)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sess, err := openSession(cfg, store, user)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if useTUI {
		return tui.RunTUI(func(ui tui.IO) error {
			ui.SystemMessage(fmt.Sprintf("faust %s — type /help for commands.", appVersion))
			t := tutor.New(p, cfg, users, store, user, sess, ui)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				cancel()
			}()

			return t.Run(ctx)
		})
	}

	// Plain IO mode
	ui := tui.NewPlainIO()
	ui.SystemMessage(fmt.Sprintf("faust %s — type /help for commands.", appVersion))
	t := tutor.New(p, cfg, users, store, user, sess, ui)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return t.Run(ctx)
}

// openStores opens the shared SQLite database for sessions and accounts.
func openStores(cfg *config.Config) (*session.SQLiteStore, *auth.Service, error) {
	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, nil, fmt.Errorf("database path: %w", err)
	}
	store, err := session.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store: %w", err)
	}
	users, err := auth.NewService(store.DB())
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, users, nil
}

// resolveUser logs in the --user account, registering it on first use.
func resolveUser(users *auth.Service) (*auth.User, error) {
	username := userFlag
	if username == "" {
		username = os.Getenv("USER")
	}
	if username == "" {
		username = "student"
	}

	_, err := users.Lookup(username)
	if errors.Is(err, auth.ErrUserNotFound) {
		fmt.Printf("Creating account %q.\n", username)
		pw, err := tui.ReadSecret("Choose a password (min 6 chars): ")
		if err != nil {
			return nil, err
		}
		return users.Register(username, pw)
	}
	if err != nil {
		return nil, err
	}

	pw, err := tui.ReadSecret(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return nil, err
	}
	return users.Login(username, pw)
}

// openSession picks the session to work in: the --session name (created if
// missing), otherwise the most recently active one, otherwise a fresh
// auto-named session. An explicit --level overrides the session's level.
func openSession(cfg *config.Config, store session.Store, user *auth.User) (*session.Session, error) {
	lvl := user.Level
	if levelFlag != "" {
		parsed, err := level.Parse(levelFlag)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	} else if cfg.DefaultLevel != "" {
		if parsed, err := level.Parse(cfg.DefaultLevel); err == nil && user.Level == level.Default {
			lvl = parsed
		}
	}

	if sessionFlag != "" {
		sess, err := store.Load(user.ID, sessionFlag)
		if errors.Is(err, session.ErrSessionNotFound) {
			sess = session.New(user.ID, sessionFlag, lvl)
			if err := store.Create(sess); err != nil {
				return nil, err
			}
			return sess, nil
		}
		if err != nil {
			return nil, err
		}
		if levelFlag != "" {
			sess.Level = lvl
		}
		return sess, nil
	}

	infos, err := store.List(user.ID)
	if err != nil {
		return nil, err
	}
	if len(infos) > 0 {
		sess, err := store.Load(user.ID, infos[0].Name)
		if err != nil {
			return nil, err
		}
		if levelFlag != "" {
			sess.Level = lvl
		}
		return sess, nil
	}

	sess := session.New(user.ID, "chat-"+time.Now().Format("20060102-150405"), lvl)
	if err := store.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
