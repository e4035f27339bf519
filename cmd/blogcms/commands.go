package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eringen/blogcms"
	"github.com/eringen/blogcms/auth"
	"github.com/eringen/blogcms/content"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "blogcms",
		Short:         "A server-rendered blog with a staff area",
		Long:          "blogcms serves a public blog and a signed-in area for managing posts, categories and feature images.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (env vars take precedence)")

	load := func() (blogcms.Config, error) {
		return blogcms.LoadConfig(configPath)
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newUserCmd(load),
		newVersionCmd(),
	)
	return root
}

type configLoader func() (blogcms.Config, error)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := blogcms.New(cfg)
			defer app.Close()
			return app.Run(ctx)
		},
	}
}

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			store, err := content.NewStore(cmd.Context(), cfg.DatabaseDriver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer store.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.DatabaseDriver)
			return nil
		},
	}
}

func newUserCmd(load configLoader) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}

	var in auth.RegisterInput
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Register a staff user",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return addUser(cmd.Context(), cfg, in, cmd)
		},
	}
	addCmd.Flags().StringVar(&in.UserName, "name", "", "user name")
	addCmd.Flags().StringVar(&in.Email, "email", "", "email address")
	addCmd.Flags().StringVar(&in.Password, "password", "", "password")
	_ = addCmd.MarkFlagRequired("name")
	_ = addCmd.MarkFlagRequired("password")

	userCmd.AddCommand(addCmd)
	return userCmd
}

func addUser(ctx context.Context, cfg blogcms.Config, in auth.RegisterInput, cmd *cobra.Command) error {
	store, err := content.NewStore(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	in.Password2 = in.Password
	user, err := auth.NewService(store).RegisterUser(ctx, in)
	if errors.Is(err, auth.ErrUserNameTaken) {
		return fmt.Errorf("user %q already exists", in.UserName)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s\n", user.UserName)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the blogcms version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "blogcms %s\n", version)
		},
	}
}
