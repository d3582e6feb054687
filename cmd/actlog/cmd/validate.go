package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nari/actlog/internal/actlog"
	"github.com/nari/actlog/internal/checksum"
	"github.com/nari/actlog/internal/config"
	"github.com/nari/actlog/internal/worker"
	"github.com/spf13/cobra"
)

// ErrValidationFailed is returned when at least one line fails its check.
var ErrValidationFailed = errors.New("validation failed")

func newValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Check the integrity suffix of every line",
		Long: `Check the integrity suffix of every line in an ACT network log.

Example:
  actlog validate Network_26202_20220209.log
  actlog validate --algorithm sha256 Network_26202_20220209.log

Without --algorithm the checksum.algorithm config key applies, as for ingest.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			algFlag := config.GetChecksumConfig().Algorithm
			if cmd.Flags().Changed("algorithm") {
				algFlag, _ = cmd.Flags().GetString("algorithm")
			}

			auto := algFlag == worker.AutoAlgorithm
			var fixed checksum.Algorithm
			if !auto {
				alg, err := checksum.ParseAlgorithm(algFlag)
				if err != nil {
					return err
				}
				fixed = alg
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open log: %w", err)
			}
			defer f.Close()

			out := cmd.OutOrStdout()
			var total, failed int
			err = actlog.Scan(cmd.Context(), f, func(raw string, index int) error {
				total++

				alg := fixed
				if auto {
					var ok bool
					if alg, ok = checksum.Detect(raw); !ok {
						failed++
						fmt.Fprintf(out, "line %d: unrecognized checksum suffix\n", index)
						return nil
					}
				}

				valid, err := checksum.Validate(raw, index, alg)
				switch {
				case err != nil:
					failed++
					fmt.Fprintf(out, "line %d: %v\n", index, err)
				case !valid:
					failed++
					fmt.Fprintf(out, "line %d: checksum mismatch (%s)\n", index, alg)
				}
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "%d lines, %d failed\n", total, failed)
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d lines", ErrValidationFailed, failed, total)
			}
			return nil
		},
	}

	cmd.Flags().StringP("algorithm", "a", worker.AutoAlgorithm, "Checksum algorithm: auto, md5 or sha256 (defaults to checksum.algorithm from the config)")
	return cmd
}
