package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	port        string
	configPath  string
	postgresURL string
	redisAddr   string
	logLevel    string
	verbose     bool
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	v := viper.New()
	v.SetEnvPrefix("ACTUATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "actuator-quiz",
		Short:         "Trade-show actuator quiz with a live leaderboard",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	fs := cmd.PersistentFlags()
	fs.StringVar(&opts.port, "port", "", "port to listen on, overrides server.port (env: ACTUATOR_PORT)")
	fs.StringVar(&opts.configPath, "config", "config/config.yaml", "path to YAML config (env: ACTUATOR_CONFIG)")
	fs.StringVar(&opts.postgresURL, "postgres-url", "", "Postgres DSN, overrides postgres.url (env: ACTUATOR_POSTGRES_URL)")
	fs.StringVar(&opts.redisAddr, "redis-addr", "", "Redis address, overrides redis.addr (env: ACTUATOR_REDIS_ADDR)")
	fs.StringVar(&opts.logLevel, "log-level", "", "log level, overrides logging.level (env: ACTUATOR_LOG_LEVEL)")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level (env: ACTUATOR_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.AddCommand(NewStartCmd(opts))
	cmd.AddCommand(NewMigrateCmd(opts))
	cmd.AddCommand(NewBankCmd(opts))
	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}
