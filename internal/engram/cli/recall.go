package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcostea/engram/internal/engram/memory"
)

var (
	recallLimit         int
	recallKinds         []string
	recallMinImportance float64
	recallAsContext     bool
)

var recallCmd = &cobra.Command{
	Use:   "recall [keywords...]",
	Short: "Retrieve the most relevant memories",
	Long: "Scores stored memories by keyword relevance and time-decayed " +
		"recency and prints the top matches. With --context, prints the " +
		"prompt-ready memory block instead.",
	Run: func(cmd *cobra.Command, args []string) {
		engine, closeEngine, err := openEngine()
		if err != nil {
			exitErr("open engine", err)
		}
		defer closeEngine()

		if recallAsContext {
			fmt.Println(engine.ContextBlock(cmd.Context(), userID, args, recallLimit))
			return
		}

		q := memory.Query{
			Keywords:      args,
			MinImportance: recallMinImportance,
			Limit:         recallLimit,
		}
		for _, k := range recallKinds {
			q.Kinds = append(q.Kinds, memory.Kind(k))
		}

		results := engine.Recall(cmd.Context(), userID, q)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for _, sm := range results {
			if err := enc.Encode(struct {
				memory.Item
				Relevance float64 `json:"relevance_score"`
				Recency   float64 `json:"recency_score"`
				Combined  float64 `json:"combined_score"`
			}{sm.Item, sm.RelevanceScore, sm.RecencyScore, sm.CombinedScore}); err != nil {
				exitErr("encode result", err)
			}
		}
	},
}

func init() {
	recallCmd.Flags().IntVarP(&recallLimit, "limit", "n", 0, "Maximum results (default 10, or 5 with --context)")
	recallCmd.Flags().StringSliceVarP(&recallKinds, "kind", "k", nil, "Filter by kind (fact, preference, emotion, goal, relationship, skill, question)")
	recallCmd.Flags().Float64Var(&recallMinImportance, "min-importance", 0, "Minimum item importance")
	recallCmd.Flags().BoolVar(&recallAsContext, "context", false, "Print the prompt-ready memory block")
	RootCmd.AddCommand(recallCmd)
}
