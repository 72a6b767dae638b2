package cmd

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sarchlab/opencache/geom"
)

// registerConfigFlags adds the cache-configuration flags shared by all
// subcommands that build a geometry.
func registerConfigFlags(cmd *cobra.Command) {
	defaults := geom.DefaultConfig()

	cmd.Flags().Int("total-size", defaults.TotalSize,
		"Total data capacity in bits")
	cmd.Flags().Int("word-size", defaults.WordSize,
		"Word size in bits")
	cmd.Flags().Int("words-per-line", defaults.WordsPerLine,
		"Number of words per cache line")
	cmd.Flags().Int("address-size", defaults.AddressSize,
		"Address width in bits")
	cmd.Flags().Int("ways", defaults.NumWays,
		"Number of ways per set")
	cmd.Flags().String("policy", defaults.ReplacementPolicy,
		"Replacement policy: empty for direct-mapped, "+
			"or one of fifo, lru, random")
	cmd.Flags().Bool("data-hazard", defaults.DataHazard,
		"Bypass same-set back-to-back hazards instead of stalling")
}

// configFromFlags builds a derived geometry from the command's flags. Flags
// that were not set on the command line fall back to OPENCACHE_* variables,
// which a local .env file can provide.
func configFromFlags(cmd *cobra.Command) (geom.Geometry, error) {
	cfg := geom.DefaultConfig()

	cfg.TotalSize = intOption(cmd, "total-size", "OPENCACHE_TOTAL_SIZE")
	cfg.WordSize = intOption(cmd, "word-size", "OPENCACHE_WORD_SIZE")
	cfg.WordsPerLine = intOption(cmd,
		"words-per-line", "OPENCACHE_WORDS_PER_LINE")
	cfg.AddressSize = intOption(cmd, "address-size", "OPENCACHE_ADDRESS_SIZE")
	cfg.NumWays = intOption(cmd, "ways", "OPENCACHE_WAYS")
	cfg.ReplacementPolicy = stringOption(cmd, "policy", "OPENCACHE_POLICY")
	cfg.DataHazard = boolOption(cmd, "data-hazard", "OPENCACHE_DATA_HAZARD")

	return cfg.Derive()
}

func intOption(cmd *cobra.Command, flag, env string) int {
	if !cmd.Flags().Changed(flag) {
		if s := os.Getenv(env); s != "" {
			if v, err := strconv.Atoi(s); err == nil {
				return v
			}
		}
	}

	v, _ := cmd.Flags().GetInt(flag)

	return v
}

func stringOption(cmd *cobra.Command, flag, env string) string {
	if !cmd.Flags().Changed(flag) {
		if s := os.Getenv(env); s != "" {
			return s
		}
	}

	v, _ := cmd.Flags().GetString(flag)

	return v
}

func boolOption(cmd *cobra.Command, flag, env string) bool {
	if !cmd.Flags().Changed(flag) {
		if s := os.Getenv(env); s != "" {
			if v, err := strconv.ParseBool(s); err == nil {
				return v
			}
		}
	}

	v, _ := cmd.Flags().GetBool(flag)

	return v
}
