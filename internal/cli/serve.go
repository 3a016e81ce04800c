package cli

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/dashgrid/pkg/server"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 10 * time.Second
)

// serveCommand runs the HTTP API over the configured store.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		idleGesture time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard editing API over HTTP",
		Long: `Serve the dashboard editing API over HTTP. Dashboards are loaded from the
configured store on first use and saved back after edits settle
(persist.debounce). Pending saves are flushed on shutdown.`,
		Example: `  dashgrid serve --addr :8080
  dashgrid serve -c prod.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			srv := server.New(cfg, st,
				server.WithLogger(c.Logger),
				server.WithGestureTimeout(idleGesture),
			)
			return c.serve(cmd.Context(), addr, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	cmd.Flags().DurationVar(&idleGesture, "gesture-timeout", server.DefaultGestureTimeout, "cancel gestures idle for this long")
	return cmd
}

// serve runs srv until ctx is cancelled, then shuts down and flushes
// pending saves.
func (c *CLI) serve(ctx context.Context, addr string, srv *server.Server) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSuccess("Listening on %s", StyleLink.Render("http://"+ln.Addr().String()))
	printNextStep("Try", "curl http://"+ln.Addr().String()+"/dashboards")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		c.Logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return stderrors.Join(hs.Shutdown(sctx), srv.Flush(sctx))
	})

	err = g.Wait()
	if err == nil && ctx.Err() != nil {
		printInfo("Stopped")
	}
	return err
}
