// Package cli wires the command tree. Flags carry the connection profile;
// an optional YAML file adds defaults and the upload-target section.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"wpback/internal/adapter/remote"
	"wpback/internal/config"
	"wpback/internal/infrastructure/logger"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "wpback",
	Short: "WordPress backup and restore over SSH",
	Long: `Back up and restore a WordPress deployment, files and database included.

Files travel over rsync, the database over mysqldump/mysql driven through
ssh. Database credentials are read from the site's own wp-config.php unless
explicitly overridden.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "path to YAML config file")
	pf.String("ssh-host", "", "SSH hostname")
	pf.String("ssh-user", "root", "SSH username")
	pf.String("ssh-key", "", "path to SSH private key file")
	pf.Int("ssh-port", 22, "SSH port")
	pf.String("wp-path", "", "WordPress installation path on the server")
	pf.String("db-name", "", "MySQL database name (normally read from wp-config.php)")
	pf.String("db-user", "", "MySQL database user (normally read from wp-config.php)")
	pf.String("db-password", "", "MySQL database password (normally read from wp-config.php)")
	pf.String("db-host", "", "MySQL database host (normally read from wp-config.php)")
	pf.Bool("db-credentials-override", false, "use the provided database credentials instead of reading wp-config.php")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-file", "", "also write JSON logs to this file")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
}

// Execute runs the command tree and returns the first failure.
func Execute(ctx context.Context) error {
	defer func() {
		if log != nil {
			log.Close()
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command) error {
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	overlay(cfg, cmd.Flags())

	log, err = logger.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	fixed, err := remote.EnsureKeyPermissions(cfg.SSHKey)
	if err != nil {
		return err
	}
	if fixed {
		log.Warnf("SSH key file %s had incorrect permissions, set to 600", cfg.SSHKey)
	}
	return nil
}

// overlay applies explicitly set flags on top of the configuration; file
// values survive only where the operator left the flag untouched.
func overlay(cfg *config.Config, f *pflag.FlagSet) {
	applyString := func(name string, dst *string) {
		if f.Changed(name) {
			*dst, _ = f.GetString(name)
		}
	}
	applyString("ssh-host", &cfg.SSHHost)
	applyString("ssh-user", &cfg.SSHUser)
	applyString("ssh-key", &cfg.SSHKey)
	applyString("wp-path", &cfg.WPPath)
	applyString("db-name", &cfg.Database.Name)
	applyString("db-user", &cfg.Database.User)
	applyString("db-password", &cfg.Database.Password)
	applyString("db-host", &cfg.Database.Host)
	applyString("log-level", &cfg.LogLevel)
	applyString("log-file", &cfg.LogFile)

	if f.Changed("ssh-port") {
		cfg.SSHPort, _ = f.GetInt("ssh-port")
	}
	if f.Changed("db-credentials-override") {
		cfg.Database.Override, _ = f.GetBool("db-credentials-override")
	}
}
