package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configDir string
	apiURL    string
	token     string
	timezone  string
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "feedback",
		Short:         "Feedback board server and command line client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configDir, "config", "config", "path to folder with configs")
	root.PersistentFlags().StringVar(&apiURL, "api", envOr("FEEDBACK_API", "http://localhost:8080"), "API base url")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("FEEDBACK_TOKEN"), "access token")
	root.PersistentFlags().StringVar(&timezone, "timezone", "UTC", "time zone that defines a day for view markers")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(tokenCmd())
	root.AddCommand(threadsCmd())
	root.AddCommand(showCmd())
	root.AddCommand(postCmd())
	root.AddCommand(replyCmd())
	root.AddCommand(deleteCmd())

	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context())
		},
	}
}

func tokenCmd() *cobra.Command {
	var name, image string

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a development access token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(args[0], name, image)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&image, "image", "", "avatar url")
	return cmd
}

func threadsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "threads",
		Short: "List active threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runThreads(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Show a thread with its replies and register a view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd.Context(), args[0])
		},
	}
}

func postCmd() *cobra.Command {
	var title, body, category string

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Start a new thread",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPost(cmd.Context(), title, body, category)
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "thread title")
	cmd.Flags().StringVar(&body, "body", "", "thread body")
	cmd.Flags().StringVar(&category, "category", "", "FEATURES, BUGS, GENERAL or FEEDBACK")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func replyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply <thread-id> <body>",
		Short: "Reply to a thread",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReply(cmd.Context(), args[0], args[1])
		},
	}
}

func deleteCmd() *cobra.Command {
	var (
		reply bool
		hard  bool
	)

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one of your threads, or a reply with --reply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd.Context(), args[0], reply, hard)
		},
	}

	cmd.Flags().BoolVar(&reply, "reply", false, "the id is a reply id")
	cmd.Flags().BoolVar(&hard, "hard", false, "remove the thread and its replies permanently")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
