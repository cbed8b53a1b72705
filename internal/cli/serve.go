package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosaiclabs/mosaic/internal/server"
	"github.com/mosaiclabs/mosaic/internal/server/store"
	"github.com/mosaiclabs/mosaic/pkg/config"
)

// newServeCmd creates the serve command, which runs the HTTP render
// service until interrupted. Flags override the [server] config section.
func newServeCmd(cfg *config.Config) *cobra.Command {
	var addr, storeKind, mongoURI string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = cfg.Server.Addr
			}
			if !cmd.Flags().Changed("store") {
				storeKind = cfg.Server.Store
			}
			if !cmd.Flags().Changed("mongo-uri") {
				mongoURI = cfg.Server.MongoURI
			}
			return runServe(cmd.Context(), cfg, addr, storeKind, mongoURI)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&storeKind, "store", "memory", "document store: memory, mongo")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "mongodb connection URI")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, addr, storeKind, mongoURI string) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg, storeKind, mongoURI)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	c, err := openCache(ctx, cfg)
	if err != nil {
		logger.Warn("render cache unavailable", "err", err)
	} else {
		defer c.Close()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           server.New(server.Options{Logger: logger, Cache: c, Store: st}).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s (store: %s)", addr, storeKind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// openStore constructs the document store selected by flags or config.
func openStore(ctx context.Context, cfg *config.Config, kind, mongoURI string) (store.Store, error) {
	switch kind {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "mongo":
		if mongoURI == "" {
			return nil, fmt.Errorf("mongo store requires --mongo-uri or server.mongo_uri")
		}
		return store.NewMongoStore(ctx, mongoURI, cfg.Server.Database)
	default:
		return nil, fmt.Errorf("unknown store: %s (must be 'memory' or 'mongo')", kind)
	}
}
