package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cory-johannsen/zonemanifest/internal/config"
	"github.com/cory-johannsen/zonemanifest/internal/generator"
	"github.com/cory-johannsen/zonemanifest/internal/mapents"
	"github.com/cory-johannsen/zonemanifest/internal/observability"
	"github.com/cory-johannsen/zonemanifest/internal/tokens"
)

// flagKeys binds command-line flags onto configuration keys so a flag
// overrides the config file and environment.
var flagKeys = map[string]string{
	"root":              "paths.root",
	"output":            "paths.output",
	"singleplayer":      "build.singleplayer",
	"tokens":            "tokens.table",
	"token-script":      "tokens.script",
	"instruction-limit": "tokens.instruction_limit",
	"log-level":         "logging.level",
	"log-format":        "logging.format",
}

// newRootCommand creates a fresh command tree so tests do not share flag state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "zonemanifest <map> [map...]",
		Short: "Generate zone source manifests for map working trees",
		Long: `zonemanifest inspects <root>/<map>/ (entity data, createfx and fx scripts,
vision/sun/clut/lightset directories, compiled map sidecars) and writes
<output>/<map>.csv listing every asset the zone builder must bundle.

Required assets that are missing on disk are written with a leading '#'.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runGenerate,
	}

	flags := cmd.Flags()
	flags.String("config", "", "path to YAML configuration file")
	flags.String("root", "zonetool", "directory holding one working tree per map")
	flags.String("output", "zone_source", "directory receiving <map>.csv")
	flags.Bool("singleplayer", false, "use singleplayer build conventions")
	flags.String("tokens", "", "YAML token table for entity-data key references")
	flags.String("token-script", "", "Lua script defining resolve_token(ref)")
	flags.Int("instruction-limit", 0, "Lua opcodes allowed per resolve_token call (0 = default)")
	flags.String("log-level", "info", "log level (debug|info|warn|error)")
	flags.String("log-format", "console", "log format (json|console)")
	flags.Bool("dry-run", false, "print manifests to stdout instead of writing them")

	return cmd
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()

	configPath, _ := cmd.Flags().GetString("config")
	v, err := config.New(configPath)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	cfg, err := config.LoadFromViper(v)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	resolve, closeResolver, err := newResolver(cfg.Tokens, logger)
	if err != nil {
		return err
	}
	defer closeResolver()

	gen := generator.New(generator.Options{
		Source:       afero.NewBasePathFs(afero.NewOsFs(), cfg.Paths.Root),
		Output:       afero.NewBasePathFs(afero.NewOsFs(), cfg.Paths.Output),
		Resolve:      resolve,
		Singleplayer: cfg.Build.Singleplayer,
		Logger:       logger,
	})

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt)
	defer stop()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	if dryRun {
		for _, m := range args {
			res, err := gen.Render(ctx, m)
			if err != nil {
				return err
			}
			if _, err := res.Manifest.WriteTo(cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("writing manifest of %q: %w", m, err)
			}
		}
		return nil
	}

	results, err := gen.RunAll(ctx, args)
	for _, res := range results {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote   %s  (%d entries, %d missing)\n",
			res.Path, res.Entries, res.Missing)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "total   %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// newResolver selects the token resolver named by cfg: a Lua script, a YAML
// table, or literal keys.
func newResolver(cfg config.TokensConfig, logger *zap.Logger) (mapents.TokenResolver, func(), error) {
	switch {
	case cfg.Script != "":
		r, err := tokens.NewLuaResolverFromFile(cfg.Script, cfg.InstructionLimit, logger)
		if err != nil {
			return nil, nil, err
		}
		return r.Resolve, r.Close, nil
	case cfg.Table != "":
		t, err := tokens.LoadTable(cfg.Table)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("loaded token table", zap.String("path", cfg.Table), zap.Int("tokens", t.Len()))
		return t.Resolve, func() {}, nil
	default:
		return tokens.Literal, func() {}, nil
	}
}
