package main

import (
	"fmt"
	rtdebug "runtime/debug"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

// versionString falls back to the module version stamped by go install and
// appends the short VCS revision when the build recorded one.
func versionString() string {
	info, ok := rtdebug.ReadBuildInfo()
	if !ok {
		return "shiftline " + version
	}
	v := version
	if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			v += " (" + s.Value[:7] + ")"
		}
	}
	return fmt.Sprintf("shiftline %s %s", v, info.GoVersion)
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
