package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ethereal77/codesync/internal/util"
)

var (
	// Version is set at build time.
	Version = "dev"

	cfgFile string

	rootCmd = &cobra.Command{
		Use:   "codesync",
		Short: "Reconcile a source and destination file tree into an editable sync plan",
		Long: `codesync reconciles two file trees - a source repository and a destination
repository - producing a human-editable synchronization plan and later
applying it.

It answers: for each file in the source, which file in the destination
(if any) corresponds to it, which source files have no counterpart,
which destination files are orphans, and which pairs are ambiguous.`,
		Version: Version,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./codesync.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose (debug) output")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "quiet output (errors only)")

	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("codesync")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("CODESYNC")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("quiet") {
		util.InfoLog("using config file: %s", viper.ConfigFileUsed())
	}

	util.SetVerbose(viper.GetBool("verbose"))
	util.SetQuiet(viper.GetBool("quiet"))
	util.SetColors(util.IsTerminal(os.Stdout.Fd()))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
