package app

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/net/netutil"

	"github.com/frankgh/pxf/cmd/pxf/config"
	"github.com/frankgh/pxf/cmd/pxf/handler"
	"github.com/frankgh/pxf/pkg/initmgr"
	"github.com/frankgh/pxf/pkg/logging"
	"github.com/frankgh/pxf/pkg/logging/otel"
	"github.com/frankgh/pxf/pkg/plugins/builtin"
	"github.com/frankgh/pxf/pkg/stats"
)

func newServeCommand() *cobra.Command {
	var configFilename string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "start the gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configFilename)
		},
	}
	cmd.Flags().StringVarP(&configFilename, "config", "c", "", "specify toml config file")
	return cmd
}

func serve(ctx context.Context, configFilename string) (err error) {
	appName := "[" + filepath.Base(os.Args[0]) + "] "

	initmgr.Register(config.Initializer, configFilename)
	if err = initmgr.Init(); err != nil { //initalize config first as others depend on it
		return
	}
	cfg := &config.Conf

	initmgr.RegisterWithFuncs(logging.Initialize, logging.Finalize, cfg.LogLevel, appName)
	initmgr.RegisterWithFuncs(otel.Initialize, otel.Finalize, &cfg.Otel)
	if err = initmgr.Init(); err != nil {
		return
	}
	cfg.Dump()

	cat, err := loadCatalog(ctx, cfg, true)
	if err != nil {
		return
	}
	defer cat.Close()

	lsnr, err := net.Listen("tcp", cfg.Listener.Addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", cfg.Listener.Addr)
	}
	lsnr = netutil.LimitListener(lsnr, cfg.Listener.MaxConns)

	srv := &http.Server{
		Handler:      handler.NewHandler(cat.registry, builtin.NewRegistry(), stats.NewDecodeStats()),
		ReadTimeout:  cfg.Listener.ReadTimeout.Duration,
		WriteTimeout: cfg.Listener.WriteTimeout.Duration,
		IdleTimeout:  cfg.Listener.IdleTimeout.Duration,
		ConnState:    trackConnState,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(lsnr)
	}()
	logging.LogServerStart(lsnr.Addr().String())
	defer logging.LogServerExit()

	select {
	case err = <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	sctx, cancel := context.WithTimeout(context.Background(), cfg.Listener.ShutdownTimeout.Duration)
	defer cancel()
	if err = srv.Shutdown(sctx); err != nil {
		glog.Warningf("shutdown: %s", err)
		srv.Close()
	}
	return nil
}

func trackConnState(c net.Conn, st http.ConnState) {
	switch st {
	case http.StateNew:
		otel.AddConnections(1)
	case http.StateHijacked, http.StateClosed:
		otel.AddConnections(-1)
	}
}
