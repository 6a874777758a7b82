package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/sw33tLie/curaudit/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                                 _ _ _
  ___ _   _ _ __ __ _ _   _  __| (_) |_
 / __| | | | '__/ _' | | | |/ _' | | __|
| (__| |_| | | | (_| | |_| | (_| | | |_
 \___|\__,_|_|  \__,_|\__,_|\__,_|_|\__|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "curaudit",
	Short: "Periodic digest of JFrog Xray curation audit events.",
	Long: LOGO + `curaudit walks the Xray curation audit log, counts what was approved, blocked and passed,
and prints which policies blocked packages.

Credentials are read from JF_USER, JF_PASSWORD and JF_URL, or from the config file.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		levelString, _ := cmd.Flags().GetString("loglevel")
		return utils.SetLogLevel(levelString)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.Log.Error(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.curaudit.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".curaudit")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()
	bindCredentials(viper.GetViper())

	// If a config file is found, read it in. A missing default file is fine.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			utils.Log.Warnf("Could not read config file %s: %v", viper.ConfigFileUsed(), err)
		}
	} else {
		utils.Log.Debugf("Using config file %s", viper.ConfigFileUsed())
	}
}

// bindCredentials maps the JFrog credentials to their environment variables and defaults.
func bindCredentials(v *viper.Viper) {
	v.BindEnv("jfrog.user", "JF_USER")
	v.BindEnv("jfrog.password", "JF_PASSWORD")
	v.BindEnv("jfrog.url", "JF_URL")

	v.SetDefault("jfrog.user", "username")
	v.SetDefault("jfrog.password", "password")
	v.SetDefault("jfrog.url", "https://env_domain")
}
