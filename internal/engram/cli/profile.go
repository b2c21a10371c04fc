package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var profileJSON bool

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Print the user's consolidated profile",
	Long: "Prints the prompt-ready profile summary, or the full profile " +
		"record with --json. Prints nothing when the user has never been " +
		"consolidated.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		engine, closeEngine, err := openEngine()
		if err != nil {
			exitErr("open engine", err)
		}
		defer closeEngine()

		if profileJSON {
			profile, err := engine.Profile(cmd.Context(), userID)
			if err != nil {
				exitErr("load profile", err)
			}
			if profile == nil {
				return
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(profile); err != nil {
				exitErr("encode profile", err)
			}
			return
		}

		summary, err := engine.ProfileSummary(cmd.Context(), userID)
		if err != nil {
			exitErr("load profile", err)
		}
		if summary != "" {
			fmt.Println(summary)
		}
	},
}

func init() {
	profileCmd.Flags().BoolVar(&profileJSON, "json", false, "Print the full profile record as JSON")
	RootCmd.AddCommand(profileCmd)
}
