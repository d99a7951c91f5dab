package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/pkg/render"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

var supplierDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the saved supplier creation draft",
}

var supplierDraftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), false, func(db *storage.DB) error {
			d, err := db.LoadSupplierDraft(cmd.Context())
			if err != nil {
				return err
			}
			render.PrintSupplierDraft(os.Stdout, d)
			return nil
		})
	},
}

var supplierDraftSetCmd = &cobra.Command{
	Use:   "set <name|country|score|audit> <value>",
	Short: "Set one field of the draft",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		field, value := args[0], args[1]
		return editSupplierDraft(cmd, func(d *supplier.Draft) error {
			switch field {
			case "name":
				d.Name = value
			case "country":
				d.Country = value
			case "score":
				d.SetScoreText(value)
			case "audit":
				if err := checkDate(value); err != nil {
					return err
				}
				d.LastAudit = value
			default:
				return fmt.Errorf("unknown field %q", field)
			}
			return nil
		})
	},
}

var supplierDraftTermCmd = &cobra.Command{
	Use:   "term",
	Short: "Edit the draft's contract terms",
}

var supplierDraftTermAddCmd = &cobra.Command{
	Use:   "add <key> <value>",
	Short: "Add a contract term, replacing any with the same key",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSupplierDraft(cmd, func(d *supplier.Draft) error {
			if err := d.AddTerm(args[0], args[1]); err != nil {
				cliNotifier{}.Error(err.Error())
				return errReported
			}
			return nil
		})
	},
}

var supplierDraftTermSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change the value of an existing contract term",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSupplierDraft(cmd, func(d *supplier.Draft) error {
			if !d.UpdateTerm(args[0], args[1]) {
				return fmt.Errorf("no contract term %q", args[0])
			}
			return nil
		})
	},
}

var supplierDraftTermRmCmd = &cobra.Command{
	Use:   "rm <key>",
	Short: "Remove a contract term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editSupplierDraft(cmd, func(d *supplier.Draft) error {
			if !d.RemoveTerm(args[0]) {
				return fmt.Errorf("no contract term %q", args[0])
			}
			return nil
		})
	},
}

var supplierDraftResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), true, func(db *storage.DB) error {
			return db.DeleteSupplierDraft(cmd.Context())
		})
	},
}

// editSupplierDraft loads, edits and saves the draft, then prints it.
func editSupplierDraft(cmd *cobra.Command, fn func(d *supplier.Draft) error) error {
	return withDB(cmd.Context(), true, func(db *storage.DB) error {
		ctx := cmd.Context()
		d, err := db.LoadSupplierDraft(ctx)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		if err := db.SaveSupplierDraft(ctx, d); err != nil {
			return err
		}
		render.PrintSupplierDraft(os.Stdout, d)
		return nil
	})
}

func init() {
	supplierCmd.AddCommand(supplierDraftCmd)
	supplierDraftCmd.AddCommand(supplierDraftShowCmd)
	supplierDraftCmd.AddCommand(supplierDraftSetCmd)
	supplierDraftCmd.AddCommand(supplierDraftTermCmd)
	supplierDraftCmd.AddCommand(supplierDraftResetCmd)
	supplierDraftTermCmd.AddCommand(supplierDraftTermAddCmd)
	supplierDraftTermCmd.AddCommand(supplierDraftTermSetCmd)
	supplierDraftTermCmd.AddCommand(supplierDraftTermRmCmd)
}
