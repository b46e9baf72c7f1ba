package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newSessionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sessions",
		Short: "List saved sessions for a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSessions()
		},
	}
}

func runSessions() error {
	cfg := initConfig()

	store, users, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	username := userFlag
	if username == "" {
		username = os.Getenv("USER")
	}
	if username == "" {
		username = "student"
	}

	// Listing is read-only, no password prompt.
	user, err := users.Lookup(username)
	if err != nil {
		return err
	}

	infos, err := store.List(user.ID)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No saved sessions.")
		return nil
	}

	fmt.Printf("%-24s %-9s %-16s %6s %8s\n", "NAME", "LEVEL", "LAST ACTIVE", "TURNS", "TOKENS")
	for _, info := range infos {
		fmt.Printf("%-24s %-9s %-16s %6d %8d\n",
			info.Name,
			info.Level,
			info.UpdatedAt.Format("2006-01-02 15:04"),
			info.Turns,
			info.Tokens,
		)
	}
	return nil
}
