package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/api"
)

var cfgFile string

// errReported is returned by commands that already told the user what went
// wrong. Execute exits non-zero without printing it again.
var errReported = errors.New("already reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "supplyscope",
	Short: "Supplier compliance from your command line.",
	Long: `supplyscope talks to a supplier compliance backend: list and create suppliers,
compose and submit compliance metric batches, and read AI insights and
compliance history. Drafts are kept locally between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Println(err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.supplyscope.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("api-url", "", "Backend base URL (default "+api.DefaultBaseURL+")")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-request timeout (default 60s)")
	rootCmd.PersistentFlags().String("dbpath", "", "Path to the local SQLite DB (default ~/.config/supplyscope/supplyscope.sqlite)")

	viper.BindPFlag("proxy", rootCmd.PersistentFlags().Lookup("proxy"))
	viper.BindPFlag("api.url", rootCmd.PersistentFlags().Lookup("api-url"))
	viper.BindPFlag("api.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("dbpath"))
}

// initConfig reads in .env, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is the normal case.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".supplyscope")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SUPPLYSCOPE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.url", api.DefaultBaseURL)
	viper.SetDefault("api.timeout", api.DefaultTimeout)
	viper.SetDefault("db.path", "")
	viper.SetDefault("db.lock_wait", utils.DefaultLockWait)
	viper.SetDefault("proxy", "")

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".supplyscope.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		fmt.Println(err)
	}
}

// newAPIClient builds a backend client from config. retries should stay 0
// for anything that writes.
func newAPIClient(retries int) (*api.Client, error) {
	timeout := viper.GetDuration("api.timeout")
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	client, err := api.NewClient(api.Config{
		BaseURL: viper.GetString("api.url"),
		Timeout: timeout,
		Proxy:   viper.GetString("proxy"),
		Retries: retries,
		Log:     utils.Log,
	})
	if err != nil {
		return nil, err
	}
	utils.Log.Debugf("Using backend %s (timeout %s, retries %d)", client.BaseURL(), timeout, retries)
	return client, nil
}

// requestContext bounds one command's network work by the configured
// timeout on top of the command context.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	timeout := viper.GetDuration("api.timeout")
	if timeout <= 0 {
		timeout = api.DefaultTimeout
	}
	// Leave room for the client's own timeout to fire first.
	return context.WithTimeout(ctx, timeout+5*time.Second)
}
