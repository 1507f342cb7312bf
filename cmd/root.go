package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/panekit/internal/app"
	"github.com/zjrosen/panekit/internal/config"
	"github.com/zjrosen/panekit/internal/keys"
	"github.com/zjrosen/panekit/internal/log"
)

func init() {
	// Query the terminal background before any Bubble Tea program starts so
	// the OSC 11 reply cannot race the input loop.
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

// localConfigPath is both the first lookup location and where the default
// config is written on first run.
const localConfigPath = ".panekit/config.yaml"

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	rootFlags []string
	noWatch   bool
	cfg       config.Config
)

var rootCmd = &cobra.Command{
	Use:   "panekit [file...]",
	Short: "A terminal workspace of split panes over project files",
	Long: `panekit opens project files as items in a tree of split panes.
Opening a file that is already open in the active pane focuses the existing
item instead of adding a second one.`,
	Version: version,
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .panekit/config.yaml, then ~/.config/panekit/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write a debug log (also enabled by PANEKIT_DEBUG)")
	rootCmd.PersistentFlags().StringSliceVarP(&rootFlags, "root", "r", nil,
		"project root directory (repeatable, overrides configured roots)")
	rootCmd.PersistentFlags().BoolVar(&noWatch, "no-watch", false,
		"do not reload files when they change on disk")
}

func initConfig() {
	setDefaults(viper.GetViper(), config.Defaults())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .panekit/config.yaml (current directory)
		// 2. ~/.config/panekit/config.yaml (user config)
		if _, err := os.Stat(localConfigPath); err == nil {
			viper.SetConfigFile(localConfigPath)
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "panekit"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if writeErr := config.WriteDefaultConfig(localConfigPath); writeErr == nil {
				viper.SetConfigFile(localConfigPath)
				_ = viper.ReadInConfig()
			}
			// If the write fails, continue on defaults.
		}
	}

	_ = viper.Unmarshal(&cfg)
}

// setDefaults registers every leaf of d so env and file values merge over it.
func setDefaults(v *viper.Viper, d config.Config) {
	v.SetDefault("roots", d.Roots)
	v.SetDefault("file_scan_exclusions", d.FileScanExclusions)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	v.SetDefault("cache_ttl", d.CacheTTL)
	v.SetDefault("queue_capacity", d.QueueCapacity)
	v.SetDefault("items.editor.tab_width", d.Items.Editor.TabWidth)
	v.SetDefault("items.editor.line_numbers", d.Items.Editor.ShowLineNumbers)
	v.SetDefault("items.markdown.style", d.Items.Markdown.Style)
	v.SetDefault("items.hex.max_bytes", d.Items.Hex.MaxBytes)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// configPath is the file roots:add writes to.
func configPath() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return localConfigPath
}

func runApp(cmd *cobra.Command, args []string) error {
	cleanup, err := initLogging(cfg.Log, "panekit")
	if err != nil {
		return err
	}
	defer cleanup()

	if noWatch {
		cfg.Watch = false
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	km := keys.DefaultKeyMap()
	if err := km.Rebind(cfg.Keys); err != nil {
		return fmt.Errorf("invalid key configuration: %w", err)
	}

	ctx := cmd.Context()
	env, err := newEnvironment(ctx, cfg, rootFlags)
	if err != nil {
		return err
	}
	defer env.Close()

	for _, arg := range args {
		if _, err := env.openArg(ctx, arg); err != nil {
			return err
		}
	}

	model := app.New(env.workspace, km)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	model.Close()

	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// initLogging enables the debug log when --debug or PANEKIT_DEBUG is set.
func initLogging(lc config.LogConfig, prefix string) (func(), error) {
	if !debugFlag && os.Getenv("PANEKIT_DEBUG") == "" {
		return func() {}, nil
	}
	logPath := lc.File
	if logPath == "" {
		logPath = "debug.log"
	}
	cleanup, err := log.InitWithTeaLog(logPath, prefix)
	if err != nil {
		return nil, fmt.Errorf("initializing debug log: %w", err)
	}
	log.SetMinLevel(log.ParseLevel(lc.Level))
	log.Info(log.CatConfig, "panekit starting", "version", version, "config", viper.ConfigFileUsed())
	return cleanup, nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
