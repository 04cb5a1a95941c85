package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jsphweid/harmondrill/config"
	"github.com/jsphweid/harmondrill/exercise"
)

func init() {
	serveCmd.Flags().String("serve-addr", "", "listen address (default from config, 127.0.0.1:8080)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the local HTTP bridge for a browser UI",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := cfg.Serve.Addr
		if flagAddr, _ := cmd.Flags().GetString("serve-addr"); flagAddr != "" {
			addr = flagAddr
		}

		engine := newEngine(cfg)
		defer engine.Close()
		session := exercise.NewSession(cfg.Exercise, nil, engine)
		server := NewServer(engine, session, cfg.PlaybackOptions(), logger)
		watchConfig(v, cfg.Serve.ReloadDebounce, server, session)

		httpServer := &http.Server{
			Addr:              addr,
			Handler:           server.Router(cfg.Serve.AllowedOrigins),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		go func() {
			<-ctx.Done()
			engine.Stop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			httpServer.Shutdown(shutdownCtx)
		}()

		logger.Info("serving", "addr", addr, "output", cfg.Output)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

// watchConfig reloads playback and exercise settings when the config
// file changes. Editors often write a file several times in a row, so
// reloads are debounced.
func watchConfig(v *viper.Viper, wait time.Duration, server *Server, session *exercise.Session) {
	path := v.ConfigFileUsed()
	if _, err := os.Stat(path); err != nil {
		logger.Debug("not watching config", "path", path, "err", err)
		return
	}

	debounced := debounce.New(wait)
	v.OnConfigChange(func(e fsnotify.Event) {
		debounced(func() {
			reloadConfig(v, server, session)
		})
	})
	v.WatchConfig()
}

func reloadConfig(v *viper.Viper, server *Server, session *exercise.Session) {
	next, err := config.Unmarshal(v)
	if err != nil {
		logger.Warn("ignoring invalid config", "err", err)
		return
	}
	server.SetOptions(next.PlaybackOptions())
	if !reflect.DeepEqual(next.Exercise, session.Settings()) {
		session.UpdateSettings(next.Exercise)
		logger.Info("exercise settings changed, score reset")
	}
	logger.Info("config reloaded", "file", v.ConfigFileUsed())
}
