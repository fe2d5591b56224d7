package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/darmiel/realmbroker/internal/api"
	"github.com/darmiel/realmbroker/internal/broker"
	"github.com/darmiel/realmbroker/internal/tasks"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the realmbroker server",
	Long: `Starts the HTTP API. Principals exchange their client credentials at
/v1/oauth/tokens for bearer tokens of their realm. The realm of a request is
taken from the configured realm header.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := buildComponents(cmd.Context())
		if err != nil {
			return err
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close components")
			}
		}()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = c.Config.Server.Addr
		}

		manager := tasks.NewManager()
		if skf, ok := c.Brokers.(*broker.SymmetricKeyFactory); ok {
			interval := time.Duration(c.Config.Tasks.SecretCheckIntervalInSeconds) * time.Second
			manager.Register(broker.SecretCheckTask, interval, broker.SecretCheck(skf.Source()))
		}
		manager.Start(cmd.Context())
		defer manager.Stop()

		srv := api.NewServer(c.Config.Server, c.Brokers, c.Authenticator, c.Auditor,
			api.WithTaskManager(manager),
			api.WithScopePolicy(c.ScopePolicy))
		server := &http.Server{
			Addr:              addr,
			Handler:           srv.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().
				Str("default_realm", c.Config.Server.DefaultRealm).
				Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return fmt.Errorf("server crashed: %w", err)
		case <-quit:
		}
		log.Info().Msg("Shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}

		log.Info().Msg("Server exited")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (default is server.addr of the config)")
}
