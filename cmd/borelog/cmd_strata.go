package main

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/borelog/internal/blob"
	"github.com/JonMunkholm/borelog/internal/stratum"
	"github.com/spf13/cobra"
)

type strataOutput struct {
	Found bool `json:"found"`
	stratum.Result
}

func newStrataCmd() *cobra.Command {
	var (
		root string
		id   stratum.Identity
	)

	cmd := &cobra.Command{
		Use:   "strata",
		Short: "Resolve the stratum data of one borehole-log version from a filesystem store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := resolveStrata(cmd.Context(), root, id)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&root, "root", "./blobdata", "blob store directory")
	cmd.Flags().StringVar(&id.ProjectID, "project", "", "project id")
	cmd.Flags().StringVar(&id.BorelogID, "borelog", "", "borehole log id")
	cmd.Flags().IntVar(&id.Version, "version", 1, "version number")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("borelog")
	return cmd
}

func resolveStrata(ctx context.Context, root string, id stratum.Identity) (strataOutput, error) {
	if err := id.Validate(); err != nil {
		return strataOutput{}, err
	}
	store, err := blob.NewFilesystem(root)
	if err != nil {
		return strataOutput{}, fmt.Errorf("open store: %w", err)
	}

	res, found, err := stratum.NewAdapter(store, nil).Resolve(ctx, id)
	if err != nil {
		return strataOutput{}, err
	}
	if !found {
		res = stratum.Result{
			BorelogID: id.BorelogID,
			VersionNo: id.Version,
			ProjectID: id.ProjectID,
			Layers:    []stratum.Layer{},
		}
	}
	return strataOutput{Found: found, Result: res}, nil
}
