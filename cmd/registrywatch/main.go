// registrywatch is a terminal client for a registry room. It maintains the
// same session state a browser tab would: live snapshot, change counts and
// edit-conflict detection, printed as log lines.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/domain"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/core/services"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/infrastructure/logging"
	"github.com/VaughnVernon/SchemaMinder-sub003/internal/realtime"
)

var (
	flagAPI      string
	flagWS       string
	flagToken    string
	flagRegistry string
	flagUser     string
	flagQueue    bool
	flagRecent   int
	flagLevel    string
)

func main() {
	root := &cobra.Command{
		Use:   "registrywatch",
		Short: "Watch a schema registry room for live changes",
		Long: `registrywatch connects to a registry's websocket room and keeps a
reconciled snapshot of the hierarchy, reporting every remote change
as it arrives.`,
		RunE: runWatch,
	}

	root.Flags().StringVar(&flagAPI, "api", "http://localhost:8080/api/v1", "REST API base URL")
	root.Flags().StringVar(&flagWS, "ws", "ws://localhost:8080/api/v1/ws", "websocket endpoint")
	root.Flags().StringVar(&flagToken, "token", "", "session token (required)")
	root.Flags().StringVar(&flagRegistry, "registry", "", "registry ID to watch (required)")
	root.Flags().StringVar(&flagUser, "user", "", "local user ID, for self-suppression")
	root.Flags().BoolVar(&flagQueue, "queue", false, "queue outbound messages while disconnected")
	root.Flags().IntVar(&flagRecent, "recent", 0, "recent-changes log capacity (0 for default)")
	root.Flags().StringVar(&flagLevel, "log-level", "info", "log level (debug, info, warn, error)")

	_ = root.MarkFlagRequired("token")
	_ = root.MarkFlagRequired("registry")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := logging.NewLogger(logging.Config{
		Level:       flagLevel,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "registrywatch",
		Environment: "cli",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loader := realtime.NewHTTPSnapshotLoader(flagAPI, flagRegistry, flagToken)

	ledger := services.NewChangeLedger(flagRecent, logger)
	watcher := services.NewEditConflictWatcher(logger)
	rec := services.NewReconciler(loader, logger)
	rec.SetOnApplied(func(snap *domain.Snapshot) {
		logger.Info("snapshot applied", "products", len(snap.Products))
	})
	rec.SetOnError(func(err error) {
		logger.Warn("reload failed, keeping last snapshot", "error", err)
	})

	conn := realtime.NewConn(realtime.Config{
		URL:           flagWS,
		Token:         flagToken,
		RegistryID:    flagRegistry,
		UserID:        flagUser,
		QueueOutbound: flagQueue,
	}, logger)

	session := realtime.NewSession(conn, flagUser, ledger, rec, watcher, logger)

	conn.OnConnect = func() {
		logger.Info("connected")
		rec.RequestReload()
	}
	conn.OnDisconnect = func(err error) {
		logger.Warn("disconnected", "error", err)
	}
	conn.OnMessage = func(msg *domain.ChangeMessage) {
		entity, _ := msg.Entity()
		op, _ := msg.Operation()
		fmt.Printf("%s  %s %s  %s\n", msg.Timestamp, entity, op, msg.EntityID)
		session.HandleMessage(msg)
	}

	go rec.Run(ctx)
	go conn.Run(ctx)

	<-ctx.Done()
	_ = conn.Close()

	logger.Info("session summary",
		"total_changes", session.TotalChangeCount(),
		"recent", len(session.RecentChanges()),
	)
	return nil
}
