package main

import (
	"encoding/json"
	"fmt"

	"github.com/opensource-finance/bce/internal/domain"
	"github.com/spf13/cobra"
)

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate one fare read from a request file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in domain.ValidationInput
			if err := readJSON(cmd, file, &in); err != nil {
				return err
			}

			v, err := opts.client().validate(cmd.Context(), &in)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(v); err != nil {
				return err
			}
			if strict && v.Status != domain.VerdictPass {
				return fmt.Errorf("verdict %s for item %d", v.Status, v.ItemNo)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Request file (- for stdin)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero unless the verdict is PASS")
	return cmd
}
