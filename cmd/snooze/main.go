// Command snooze is a terminal client for the Hack or Snooze news API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/patric-chuzhbe/hackorsnooze/internal/app"
	"github.com/patric-chuzhbe/hackorsnooze/internal/config"
	"github.com/patric-chuzhbe/hackorsnooze/internal/models"
	"github.com/patric-chuzhbe/hackorsnooze/internal/story"
	"github.com/patric-chuzhbe/hackorsnooze/internal/user"
)

type rootFlags struct {
	apiBaseURL string
	logLevel   string
}

// configArgs turns the persistent flags into config flags, so they go
// through the same precedence and validation as every other source.
func configArgs(flags *rootFlags) []string {
	args := make([]string, 0, 4)
	if flags.apiBaseURL != "" {
		args = append(args, "-b", flags.apiBaseURL)
	}
	if flags.logLevel != "" {
		args = append(args, "-l", flags.logLevel)
	}

	return args
}

func newApp(flags *rootFlags) (*app.App, error) {
	cfg, err := config.New(config.WithArgs(configArgs(flags)))
	if err != nil {
		return nil, err
	}

	return app.New(cfg)
}

// withApp adapts a command body that needs an App to cobra's RunE.
func withApp(flags *rootFlags, run func(cmd *cobra.Command, a *app.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(flags)
		if err != nil {
			return err
		}
		defer a.Close()

		return run(cmd, a, args)
	}
}

func printStory(cmd *cobra.Command, s *story.Story, marker string) {
	host, err := s.HostName()
	if err != nil {
		host = "invalid url"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s  %s (%s)\n    by %s, posted by %s [%s]\n", marker, s.StoryID, s.Title, host, s.Author, s.Username, s.CreatedAt)
}

func favoriteMarker(u *user.User, s *story.Story) string {
	if u != nil && u.IsFavorite(s) {
		return "*"
	}

	return " "
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:           "snooze",
		Short:         "Read and post stories on Hack or Snooze",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&flags.apiBaseURL, "api", "b", "", "base URL of the news API")
	rootCmd.PersistentFlags().StringVarP(&flags.logLevel, "log-level", "l", "", "logger level")

	storiesCmd := &cobra.Command{
		Use:   "stories",
		Short: "List the story feed",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, _ []string) error {
			list, err := a.Stories(cmd.Context())
			if err != nil {
				return err
			}
			u := a.CurrentUser(cmd.Context())
			for _, s := range list.Stories() {
				printStory(cmd, s, favoriteMarker(u, s))
			}
			return nil
		}),
	}

	signupCmd := &cobra.Command{
		Use:   "signup <username> <password> <name>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.Signup(cmd.Context(), args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s!\n", u.Name)
			return nil
		}),
	}

	loginCmd := &cobra.Command{
		Use:   "login <username> <password>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(2),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			u, err := a.Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", u.Username)
			return nil
		}),
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, _ []string) error {
			return a.Logout()
		}),
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session, if it is still valid",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, _ []string) error {
			u := a.CurrentUser(cmd.Context())
			if u == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(
				cmd.OutOrStdout(),
				"%s (%s), member since %s: %d stories, %d favorites\n",
				u.Username, u.Name, u.CreatedAt, u.OwnStories().Len(), u.Favorites().Len(),
			)
			return nil
		}),
	}

	addCmd := &cobra.Command{
		Use:   "add <title> <author> <url>",
		Short: "Post a story",
		Args:  cobra.ExactArgs(3),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			s, err := a.AddStory(cmd.Context(), models.NewStory{Title: args[0], Author: args[1], URL: args[2]})
			if err != nil {
				return err
			}
			printStory(cmd, s, "+")
			return nil
		}),
	}

	removeCmd := &cobra.Command{
		Use:   "remove <story-id>",
		Short: "Delete one of your stories",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			return a.RemoveStory(cmd.Context(), args[0])
		}),
	}

	favoriteCmd := &cobra.Command{
		Use:   "favorite <story-id>",
		Short: "Add a story to your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			_, err := a.ToggleFavorite(cmd.Context(), args[0], true)
			return err
		}),
	}

	unfavoriteCmd := &cobra.Command{
		Use:   "unfavorite <story-id>",
		Short: "Remove a story from your favorites",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, args []string) error {
			_, err := a.ToggleFavorite(cmd.Context(), args[0], false)
			return err
		}),
	}

	favoritesCmd := &cobra.Command{
		Use:   "favorites",
		Short: "List your favorite stories",
		Args:  cobra.NoArgs,
		RunE: withApp(flags, func(cmd *cobra.Command, a *app.App, _ []string) error {
			u, err := a.Me(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range u.Favorites().All() {
				printStory(cmd, s, "*")
			}
			return nil
		}),
	}

	rootCmd.AddCommand(
		storiesCmd,
		signupCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		addCmd,
		removeCmd,
		favoriteCmd,
		unfavoriteCmd,
		favoritesCmd,
	)

	return rootCmd
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}

	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
