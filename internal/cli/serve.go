package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/photogrid/internal/server"
)

// serveOpts holds flags that override the config file.
type serveOpts struct {
	config  string
	addr    string
	store   string
	cache   string
	redis   string
	maxMiB  int64
	fontDir []string
}

// serveCommand creates the serve command for the browser upload UI.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the browser upload UI",
		Long: `Run the web UI: upload images, caption them, choose the column count and
download the composed grid.

Settings come from defaults, then the optional TOML file given with --config,
then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			srv, err := server.Open(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			logger.Info("starting photogrid", "addr", cfg.Addr, "store", cfg.Store, "cache", cfg.Cache)
			return srv.Run(ctx)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.config, "config", "", "TOML config file")
	f.StringVar(&opts.addr, "addr", server.DefaultAddr, "listen address")
	f.StringVar(&opts.store, "store", server.BackendMemory, "session store: memory, file or redis")
	f.StringVar(&opts.cache, "cache", server.BackendNone, "result cache: none, file or redis")
	f.StringVar(&opts.redis, "redis-addr", "", "redis address for the redis store or cache")
	f.Int64Var(&opts.maxMiB, "max-upload-mib", server.DefaultMaxUploadBytes>>20, "upload size limit per request in MiB")
	f.StringArrayVar(&opts.fontDir, "font-dir", nil, "extra directory searched for caption fonts (repeatable)")

	return cmd
}

// load builds the server config: defaults, then the file, then any flag the
// user set explicitly.
func (o serveOpts) load(cmd *cobra.Command) (server.Config, error) {
	cfg := server.DefaultConfig()
	if o.config != "" {
		loaded, err := server.LoadConfig(o.config)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = o.addr
	}
	if flags.Changed("store") {
		cfg.Store = o.store
	}
	if flags.Changed("cache") {
		cfg.Cache = o.cache
		if o.cache == server.BackendFile && cfg.CacheDir == "" {
			dir, err := cacheDir()
			if err != nil {
				return cfg, err
			}
			cfg.CacheDir = dir
		}
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr = o.redis
	}
	if flags.Changed("max-upload-mib") {
		cfg.MaxUploadBytes = o.maxMiB << 20
	}
	if flags.Changed("font-dir") {
		cfg.Grid.FontDirs = o.fontDir
	}
	return cfg, cfg.Validate()
}
