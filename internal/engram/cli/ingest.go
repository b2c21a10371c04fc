package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcostea/engram/internal/engram/memory"
)

var startingID int

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Extract and persist memories from conversation turns",
	Long: "Reads JSONL conversation turns ({\"user_text\", \"assistant_text\", " +
		"\"timestamp\"}) from a file or stdin, runs the extraction pipeline, " +
		"and persists the resulting memory items.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := io.Reader(os.Stdin)
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				exitErr("open turns file", err)
			}
			defer f.Close()
			in = f
		}

		turns, err := readTurns(in)
		if err != nil {
			exitErr("read turns", err)
		}
		if len(turns) == 0 {
			fmt.Println("no turns to ingest")
			return
		}

		engine, closeEngine, err := openEngine()
		if err != nil {
			exitErr("open engine", err)
		}
		defer closeEngine()

		items, err := engine.IngestBatch(cmd.Context(), userID, turns, startingID)
		if err != nil {
			exitErr("ingest", err)
		}
		fmt.Printf("ingested %d turns, extracted %d memory items\n", len(turns), len(items))
	},
}

func init() {
	ingestCmd.Flags().IntVar(&startingID, "starting-id", 0, "First conversation id assigned to the batch")
	RootCmd.AddCommand(ingestCmd)
}

// turnLine is the JSONL wire form of one conversation turn.
type turnLine struct {
	UserText      string `json:"user_text"`
	AssistantText string `json:"assistant_text"`
	Timestamp     string `json:"timestamp"`
}

// readTurns parses JSONL turns, one object per line. Blank lines are
// skipped; a malformed line or timestamp fails the whole read so the caller
// does not silently ingest a truncated batch.
func readTurns(r io.Reader) ([]memory.Turn, error) {
	var turns []memory.Turn

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var tl turnLine
		if err := json.Unmarshal(line, &tl); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}

		ts, err := time.Parse(time.RFC3339, tl.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse timestamp: %w", lineNo, err)
		}

		turns = append(turns, memory.Turn{
			UserText:      tl.UserText,
			AssistantText: tl.AssistantText,
			Timestamp:     ts,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return turns, nil
}
