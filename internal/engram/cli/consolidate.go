package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Rebuild the user profile from all stored memories",
	Long: "Folds the user's full memory corpus into the consolidated " +
		"profile and overwrites the stored record.",
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		engine, closeEngine, err := openEngine()
		if err != nil {
			exitErr("open engine", err)
		}
		defer closeEngine()

		profile, err := engine.Consolidate(cmd.Context(), userID)
		if err != nil {
			exitErr("consolidate", err)
		}

		fmt.Printf("consolidated profile for %s: %d facts, %d preferences, %d relationships, %d goals, %d interests\n",
			profile.UserID,
			len(profile.CoreFacts),
			len(profile.Preferences),
			len(profile.Relationships),
			len(profile.Goals),
			len(profile.Interests),
		)
	},
}

func init() {
	RootCmd.AddCommand(consolidateCmd)
}
