package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/kirchhoff/pkg/api"
	"github.com/matzehuels/kirchhoff/pkg/store"
)

const shutdownTimeout = 10 * time.Second

type serveOpts struct {
	addr    string
	mongo   string
	dataDir string
}

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Saved analyses are kept in MongoDB when --mongo (or server.mongo_uri in the
config) is set, in JSON files under --data when that is set, and in memory
otherwise. The server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				opts.addr = c.Config.Server.Addr
			}
			if opts.mongo == "" {
				opts.mongo = c.Config.Server.MongoURI
			}
			return c.runServe(cmd.Context(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address (default from config)")
	cmd.Flags().StringVar(&opts.mongo, "mongo", "", "MongoDB URI for saved analyses")
	cmd.Flags().StringVar(&opts.dataDir, "data", "", "directory for saved analyses (when not using MongoDB)")
	return cmd
}

func (c *CLI) newStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	switch {
	case opts.mongo != "":
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s, err := store.NewMongoStore(ctx, opts.mongo, c.Config.Server.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("connect store: %w", err)
		}
		c.Logger.Info("storing analyses in mongodb", "database", c.Config.Server.MongoDatabase)
		return s, nil
	case opts.dataDir != "":
		s, err := store.NewFileStore(opts.dataDir)
		if err != nil {
			return nil, err
		}
		c.Logger.Info("storing analyses on disk", "dir", s.Path())
		return s, nil
	}
	c.Logger.Info("storing analyses in memory")
	return store.NewMemoryStore(), nil
}

func (c *CLI) runServe(ctx context.Context, stderr io.Writer, opts serveOpts) error {
	runner, err := c.newRunner(ctx)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	st, err := c.newStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.Close(ctx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", opts.addr, err)
	}

	srv := &http.Server{
		Handler:           api.New(runner, st, c.Logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	printSuccess(stderr, "Listening on %s", ln.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
