package main

import (
	"io"
	"os"

	"github.com/JonMunkholm/borelog/internal/sheet"
	"github.com/spf13/cobra"
)

func newFlattenCmd() *cobra.Command {
	var sheetName string

	cmd := &cobra.Command{
		Use:   "flatten FILE.xlsx",
		Short: "Print one worksheet of a spreadsheet export as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			text, err := sheet.Flatten(f, sheetName)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().StringVar(&sheetName, "sheet", "", "worksheet name (default: first sheet)")
	return cmd
}
