package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/JaimeStill/courier/internal/approvals"
	"github.com/JaimeStill/courier/internal/client"
	"github.com/JaimeStill/courier/internal/config"
)

const (
	envServer = "COURIER_SERVER"
	envToken  = "COURIER_TOKEN"

	defaultServer = "http://localhost:8080/api"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newClient builds a client from the persistent flags, falling back to
// COURIER_SERVER and COURIER_TOKEN.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	server, _ := cmd.Flags().GetString("server")
	if server == "" {
		server = os.Getenv(envServer)
	}
	if server == "" {
		server = defaultServer
	}

	token, _ := cmd.Flags().GetString("token")
	if token == "" {
		token = os.Getenv(envToken)
	}
	if token == "" {
		return nil, fmt.Errorf("no session: pass --token or set %s", envToken)
	}

	session, err := client.SessionFromToken(token)
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		return nil, fmt.Errorf("session expired at %s; sign in again", session.ExpiresAt.Format(time.RFC3339))
	}

	stderr := cmd.ErrOrStderr()
	return client.New(client.Config{
		BaseURL: server,
		Session: session,
		Observer: client.ObserverFunc(func(s client.Session) {
			fmt.Fprintln(stderr, "session expired; sign in again")
		}),
		Logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	})
}

var rootCmd = &cobra.Command{
	Use:          "courier",
	Short:        "Correspondence archive client",
	SilenceUsage: true,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <barcode>",
	Short: "Look up a document by full or partial barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		doc, err := c.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Barcode:\t%s\n", doc.Barcode)
		fmt.Fprintf(w, "Type:\t%s\n", doc.Type)
		fmt.Fprintf(w, "Subject:\t%s\n", doc.Subject)
		fmt.Fprintf(w, "Sender:\t%s\n", doc.Sender)
		fmt.Fprintf(w, "Receiver:\t%s\n", doc.Receiver)
		fmt.Fprintf(w, "Priority:\t%s (%s)\n", doc.Priority, doc.Priority.Label())
		fmt.Fprintf(w, "Attachments:\t%d\n", doc.AttachmentCount)
		return w.Flush()
	},
}

var timelineCmd = &cobra.Command{
	Use:   "timeline <barcode>",
	Short: "Show a document's timeline, optionally adding a note first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note, _ := cmd.Flags().GetString("note")

		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		view := c.NewTimelineView(args[0])
		if note != "" {
			if _, err := view.Append(cmd.Context(), note); err != nil {
				return err
			}
		}
		if err := view.Refresh(cmd.Context()); err != nil {
			return err
		}

		entries := view.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No timeline entries.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		for _, e := range entries {
			marker := ""
			if e.Pending {
				marker = " (pending)"
			}
			fmt.Fprintf(w, "%s\t%s%s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Message, marker)
		}
		return w.Flush()
	},
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Show the notification badge count",
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool("watch")

		c, err := newClient(cmd)
		if err != nil {
			return err
		}

		if !watch {
			count, err := c.NotificationCount(cmd.Context())
			if err != nil {
				return err
			}
			printCount(cmd.OutOrStdout(), count)
			return nil
		}

		var nc config.NotificationsConfig
		if err := nc.Finalize(); err != nil {
			return fmt.Errorf("notifications config: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		poller := client.NewPoller(
			nc.PollIntervalDuration(),
			c.NotificationCount,
			func(count *approvals.Count) { printCount(out, count) },
			nil,
		)
		if err := poller.Run(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	},
}

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "List approval requests",
}

var approvalsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List requests you sent; decisions are marked seen",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		items, err := c.MyRequests(cmd.Context())
		if err != nil {
			return err
		}
		return printRequests(cmd.OutOrStdout(), items)
	},
}

var approvalsPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List requests awaiting your decision",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient(cmd)
		if err != nil {
			return err
		}
		items, err := c.Pending(cmd.Context())
		if err != nil {
			return err
		}
		return printRequests(cmd.OutOrStdout(), items)
	},
}

func printCount(w io.Writer, count *approvals.Count) {
	fmt.Fprintf(w, "%s  total=%d decisions=%d awaiting=%d\n",
		time.Now().Format("15:04:05"), count.Total, count.Requester, count.Manager)
}

func printRequests(out io.Writer, items []approvals.Request) error {
	if len(items) == 0 {
		fmt.Fprintln(out, "No requests.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tSTATUS\tTITLE\tCREATED")
	for _, r := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.ApprovalNumber, r.Status, r.Title, r.CreatedAt.Local().Format("2006-01-02"))
	}
	return w.Flush()
}

func init() {
	rootCmd.PersistentFlags().String("server", "", "API base URL (default $"+envServer+" or "+defaultServer+")")
	rootCmd.PersistentFlags().String("token", "", "Session token (default $"+envToken+")")

	rootCmd.AddCommand(resolveCmd)

	rootCmd.AddCommand(timelineCmd)
	timelineCmd.Flags().StringP("note", "n", "", "Append a note before listing")

	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.Flags().BoolP("watch", "w", false, "Poll until interrupted")

	rootCmd.AddCommand(approvalsCmd)
	approvalsCmd.AddCommand(approvalsMineCmd)
	approvalsCmd.AddCommand(approvalsPendingCmd)
}
