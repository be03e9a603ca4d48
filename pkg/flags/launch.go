package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Paintersrp/mdw/internal/document"
)

func AddVerbose(cmd *cobra.Command) {
	cmd.PersistentFlags().
		BoolP(
			"verbose",
			"v",
			false,
			"Write debug records to the log file",
		)
	viper.BindPFlag("verbose", cmd.PersistentFlags().Lookup("verbose"))
}

func AddMode(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringP(
			"mode",
			"m",
			"",
			"View mode to start in for this session: edit or render",
		)
}

// HandleMode returns the --mode override, or "" when the persisted mode
// should be used.
func HandleMode(cmd *cobra.Command) (document.ViewMode, error) {
	raw, err := cmd.Flags().GetString("mode")
	if err != nil {
		return "", fmt.Errorf("error retrieving mode flag: %w", err)
	}
	if raw == "" {
		return "", nil
	}

	mode := document.ViewMode(strings.ToLower(strings.TrimSpace(raw)))
	if !mode.Valid() {
		return "", fmt.Errorf("invalid mode %q. Please choose from 'edit' or 'render'", raw)
	}
	return mode, nil
}

// AddServe adds --serve. Given without a value it uses server.addr from the
// config file.
func AddServe(cmd *cobra.Command) {
	cmd.PersistentFlags().
		String(
			"serve",
			"",
			"Serve a live browser preview on this address (--serve=host:port)",
		)
	cmd.PersistentFlags().Lookup("serve").NoOptDefVal = viper.GetString("server.addr")
}

func HandleServe(cmd *cobra.Command) string {
	addr, err := cmd.Flags().GetString("serve")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(addr)
}
