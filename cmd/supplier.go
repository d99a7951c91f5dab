package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/render"
)

const (
	fetchSuppliersFailed = "Failed to fetch suppliers. Please try again later."
	noSuppliersMessage   = "No suppliers found."
	supplierLookupFailed = "Supplier not found or server error."
)

var supplierCmd = &cobra.Command{
	Use:   "supplier",
	Short: "List, look up and create suppliers",
}

var supplierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all suppliers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		client, err := newAPIClient(0)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		suppliers, err := client.ListSuppliers(ctx)
		if err != nil {
			utils.Log.Debugf("list suppliers: %v", err)
			fmt.Fprintln(os.Stderr, fetchSuppliersFailed)
			return errReported
		}
		if len(suppliers) == 0 {
			fmt.Println(noSuppliersMessage)
			return nil
		}
		return render.PrintSuppliers(os.Stdout, suppliers, outputFlags, delimiter)
	},
}

var supplierGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one supplier",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}

		client, err := newAPIClient(0)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		s, err := client.GetSupplier(ctx, id)
		if err != nil {
			utils.Log.Debugf("get supplier %d: %v", id, err)
			fmt.Fprintln(os.Stderr, supplierLookupFailed)
			return errReported
		}
		render.PrintSupplier(os.Stdout, s)
		return nil
	},
}

// idArg parses an optional positional supplier id.
func idArg(args []string) (int, error) {
	text := ""
	if len(args) > 0 {
		text = args[0]
	}
	return utils.ParseID(text)
}

func init() {
	rootCmd.AddCommand(supplierCmd)
	supplierCmd.AddCommand(supplierListCmd)
	supplierCmd.AddCommand(supplierGetCmd)

	supplierListCmd.Flags().StringP("output", "o", render.DefaultFlags, "Output flags. Supported: i (id), n (name), c (country), s (score), a (last audit), t (contract terms)")
	supplierListCmd.Flags().StringP("delimiter", "d", " ", "Delimiter character to use for output")
}
