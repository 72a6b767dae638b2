package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/opencache/geom"
	"github.com/sarchlab/opencache/policy"
)

// geometryReport bundles the derived geometry with the use-array width the
// array-generation collaborator needs for the selected replacement policy.
type geometryReport struct {
	geom.Geometry

	UsesMetadataArray bool
	MetadataBits      int
}

func makeGeometryReport(g geom.Geometry) geometryReport {
	pol := policy.New(g)

	return geometryReport{
		Geometry:          g,
		UsesMetadataArray: pol.UsesMetadataArray(),
		MetadataBits:      pol.MetadataBits(),
	}
}

var geometryCmd = &cobra.Command{
	Use:   "geometry",
	Short: "Derive and print the cache geometry of a configuration.",
	Long: "`geometry` validates the configuration flags, derives the " +
		"address split, array dimensions, and use-array width, and prints " +
		"them as JSON.",
	Run: func(cmd *cobra.Command, _ []string) {
		g, err := configFromFlags(cmd)
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}

		report := makeGeometryReport(g)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Error encoding geometry: %v", err)
		}

		fmt.Fprintf(os.Stderr,
			"%d sets x %d ways, %d-bit tag, %d words per line, "+
				"%d use-array bits per row\n",
			g.NumRows, g.NumWays, g.TagSize, g.WordsPerLine,
			report.MetadataBits)
	},
}

func init() {
	rootCmd.AddCommand(geometryCmd)
	registerConfigFlags(geometryCmd)
}
