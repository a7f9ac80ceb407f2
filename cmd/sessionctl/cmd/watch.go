package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/sessionkit/pkg/httpserver"
	"github.com/dmitrymomot/sessionkit/pkg/logger"
	"github.com/dmitrymomot/sessionkit/pkg/sessioncache"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the session alive and print every change",
	Long: `Start the session manager and print each state change until interrupted.
Token refresh runs in the background. With METRICS_ADDR set, /metrics,
/healthz and /readyz are served on that address.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		s, err := loadSettings()
		if err != nil {
			return err
		}
		log := newLogger(s.app, logLevel, cmd.ErrOrStderr())

		startCtx, cancel := context.WithTimeout(ctx, timeout)
		a, err := newApp(startCtx, s, log)
		if err != nil {
			cancel()
			return err
		}
		defer func() { _ = a.Close() }()

		out := cmd.OutOrStdout()
		unsubscribe := a.manager.OnChange(func(st sessioncache.State) {
			_ = printState(out, st, time.Now(), false)
		})
		defer unsubscribe()

		err = a.manager.Start(startCtx)
		cancel()
		if err != nil {
			return err
		}

		g, ctx := errgroup.WithContext(ctx)
		if s.ops.Enabled() {
			srv := httpserver.NewFromConfig(s.ops, httpserver.WithLogger(log))
			g.Go(func() error {
				return srv.Run(ctx, httpserver.OpsHandler(a.registry, log, a.probes...))
			})
		}
		g.Go(func() error {
			<-ctx.Done()
			log.InfoContext(ctx, "stopping", logger.Phase(a.manager.Phase().String()))
			return nil
		})
		return g.Wait()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
