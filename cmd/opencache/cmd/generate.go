package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/opencache/recording"
	"github.com/sarchlab/opencache/verification"
)

// vectorRow is the recording layout of one golden vector.
type vectorRow struct {
	Seq         int
	Flush       bool
	WriteEnable bool
	Mask        uint64
	Addr        uint64
	Data        uint64
	StallCycles int
	DOut        uint64
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate golden test vectors into a SQLite database.",
	Long: "`generate` runs the reference simulator over a randomized " +
		"access sequence and stores the resulting golden vectors, " +
		"including expected stall counts and data words.",
	Run: func(cmd *cobra.Command, _ []string) {
		g, err := configFromFlags(cmd)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		latency, _ := cmd.Flags().GetInt("latency")
		output, _ := cmd.Flags().GetString("output")

		gen := verification.NewGenerator(g, latency, seed)
		vectors := gen.Generate(count)

		rec := recording.NewRecorder(output)
		rec.CreateTable("vectors", vectorRow{})
		for _, v := range vectors {
			rec.Insert("vectors", vectorRow(v))
		}
		rec.Flush()

		fmt.Printf("Generated %d vectors (seed %d, latency %d)\n",
			len(vectors), seed, latency)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	registerConfigFlags(generateCmd)
	generateCmd.Flags().Int("count", 1000, "Number of vectors to generate")
	generateCmd.Flags().Int64("seed", 1, "Random seed")
	generateCmd.Flags().Int("latency", 4, "Main-memory latency in cycles")
	generateCmd.Flags().String("output", "",
		"Output database name, without the .sqlite3 extension")
}
