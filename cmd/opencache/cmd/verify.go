package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/sarchlab/opencache/controller"
	"github.com/sarchlab/opencache/mem"
	"github.com/sarchlab/opencache/monitoring"
	"github.com/sarchlab/opencache/recording"
	"github.com/sarchlab/opencache/verification"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Replay golden vectors against the cache controller.",
	Long: "`verify` generates golden vectors with the reference simulator " +
		"and replays them cycle by cycle against the controller, checking " +
		"every stall count and data word.",
	Run: func(cmd *cobra.Command, _ []string) {
		g, err := configFromFlags(cmd)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		latency, _ := cmd.Flags().GetInt("latency")
		record, _ := cmd.Flags().GetString("record")
		monitorOn, _ := cmd.Flags().GetBool("monitor")
		port, _ := cmd.Flags().GetInt("port")
		openBrowser, _ := cmd.Flags().GetBool("open-browser")

		main := mem.NewLatencyMemory(latency, g.NumLines(), g.WordsPerLine)
		c := controller.MakeBuilder().
			WithGeometry(g).
			WithMainMemory(main).
			Build("Cache")

		runner := verification.NewRunner(c)
		if record != "" {
			runner.WithRecorder(recording.NewRecorder(record))
		}

		if monitorOn {
			monitor := monitoring.NewMonitor().WithPortNumber(port)
			monitor.RegisterCache(c.Name(), g)
			monitor.RegisterTarget(c)
			monitor.StartServer(openBrowser)
			runner.WithProgress(
				monitor.CreateProgressBar("vector replay", uint64(count)))
		}

		gen := verification.NewGenerator(g, latency, seed)
		vectors := gen.Generate(count)

		if err := runner.Run(vectors); err != nil {
			log.Fatalf("Verification failed: %v", err)
		}

		fmt.Printf("All %d vectors passed (seed %d, latency %d)\n",
			count, seed, latency)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
	registerConfigFlags(verifyCmd)
	verifyCmd.Flags().Int("count", 1000, "Number of vectors to replay")
	verifyCmd.Flags().Int64("seed", 1, "Random seed")
	verifyCmd.Flags().Int("latency", 4, "Main-memory latency in cycles")
	verifyCmd.Flags().String("record", "",
		"Record per-vector results into this database")
	verifyCmd.Flags().Bool("monitor", false,
		"Serve run state over HTTP while replaying")
	verifyCmd.Flags().Int("port", 0, "Monitoring server port")
	verifyCmd.Flags().Bool("open-browser", false,
		"Open the monitoring dashboard in the local browser")
}
