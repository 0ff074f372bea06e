package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/debox-network/ipfs-webdav/pkg/clog"
	"github.com/debox-network/ipfs-webdav/pkg/config"
	"github.com/debox-network/ipfs-webdav/pkg/davserver"
	"github.com/debox-network/ipfs-webdav/pkg/davserver/webapi"
	"github.com/debox-network/ipfs-webdav/pkg/mfsdav"
	"github.com/debox-network/ipfs-webdav/pkg/peer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	cfgFile    string
	dotenvFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ipfsdavd",
	Short: "Serve an IPFS node's mutable file system over WebDAV",
	Long: `Serve an IPFS node's mutable file system (MFS) over WebDAV.

Configuration comes from command line flags, IPFSDAV_* environment
variables, an optional .env file and an optional YAML config file, in that
order of precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dotenvFile != "" {
			if err := config.NewDotenvConfig(dotenvFile).Load(); err != nil {
				return errors.Wrapf(err, "unable to load %s", dotenvFile)
			}
		}

		c := config.NewViperConfig(cfgFile)
		if err := c.BindFlags(cmd.Flags()); err != nil {
			return err
		}

		if err := c.Load(); err != nil {
			return err
		}

		cfg, err := config.LoadServerConfig(c)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return Run(ctx, cfg)
	},
}

// Run serves WebDAV, and the admin API when it is enabled, until ctx is
// cancelled or one of the servers fails.
func Run(ctx context.Context, cfg *config.ServerConfig) error {
	loggers := clog.Default()
	if err := setupLogging(loggers, cfg); err != nil {
		return err
	}

	store := newStore(cfg)
	fsys := mfsdav.New(store,
		mfsdav.WithLogger(loggers.UsingCtx(clog.FSCtx)),
		mfsdav.WithStrictErrors(cfg.StrictErrors))

	davHandler := davserver.NewHandler(fsys, davserver.HandlerOpts{
		Prefix: cfg.Prefix,
		Logger: loggers.UsingCtx(clog.DAVCtx),
	})

	davServer := &http.Server{Addr: cfg.Listen, Handler: davHandler}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("Serving WebDAV on %s%s (backend %s, strict errors %t)", cfg.Listen, cfg.Prefix, cfg.Backend, cfg.StrictErrors)
		if err := davServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "webdav server failed")
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return shutdown(davServer)
	})

	if cfg.AdminListen != "" {
		e := webapi.NewServer(webapi.RouteDependencies{
			Cache:     fsys.Cache(),
			Loggers:   loggers,
			LogOutput: cfg.LogOutput,
		})

		g.Go(func() error {
			log.Infof("Serving admin API on %s", cfg.AdminListen)
			if err := e.Start(cfg.AdminListen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrap(err, "admin server failed")
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return e.Shutdown(shutdownCtx)
		})
	}

	err := g.Wait()
	log.Infof("ipfsdavd stopped")
	return err
}

func newStore(cfg *config.ServerConfig) peer.Store {
	if cfg.Backend == config.BackendMemory {
		log.Warnf("Using the in-memory backend, nothing will be stored on a node")
		return peer.NewInstrumented(peer.NewMemStore())
	}

	client := peer.NewClient(peer.ClientOpts{APIURL: cfg.IPFSAPI, Timeout: cfg.RequestTimeout})
	return peer.NewInstrumented(client)
}

func setupLogging(loggers *clog.ContextLogger, cfg *config.ServerConfig) error {
	w, err := clog.OpenOutput(cfg.LogOutput)
	if err != nil {
		return err
	}

	if err := loggers.SetOutput(clog.GlobalLoggerCtx, w); err != nil {
		return err
	}

	if err := loggers.SetLevelFromString(clog.GlobalLoggerCtx, cfg.LogLevel); err != nil {
		return err
	}

	clog.Install()
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&cfgFile, "config", "", "config file (default is ./ipfsdav.yaml or ~/.config/ipfsdav/ipfsdav.yaml)")
	rootCmd.Flags().StringVar(&dotenvFile, "env-file", "", ".env file to load IPFSDAV_* variables from")
	rootCmd.Flags().String("ipfs-api", "http://127.0.0.1:5001", "URL of the IPFS node RPC API")
	rootCmd.Flags().String("backend", config.BackendIPFS, "storage backend: ipfs or memory")
	rootCmd.Flags().String("listen", ":4918", "address to serve WebDAV on")
	rootCmd.Flags().String("prefix", "", "URL path prefix of the WebDAV tree")
	rootCmd.Flags().String("admin-listen", "localhost:4919", "address of the admin API, or off")
	rootCmd.Flags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.Flags().String("log-output", "stdout", "log destination: stdout, stderr or a file")
	rootCmd.Flags().Bool("strict-errors", false, "fail requests when the node rejects a change")
	rootCmd.Flags().Int("request-timeout-seconds", 30, "timeout for a single call to the node, 0 for none")
}
