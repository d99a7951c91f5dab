package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/render"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/supplier"
)

var supplierCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a supplier from the saved draft and any flags given",
	Long: `Create a supplier. Flags are applied on top of the saved draft (see
"supplier draft"). On success the draft is cleared; on failure it is kept.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		client, err := newAPIClient(0)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		return withDB(cmd.Context(), true, func(db *storage.DB) error {
			draft, err := db.LoadSupplierDraft(ctx)
			if err != nil {
				return err
			}
			if err := applySupplierFlags(cmd, draft, cliNotifier{}); err != nil {
				return err
			}

			form := supplier.NewForm(draft, client, cliNotifier{}, utils.Log)
			created, err := form.Create(ctx)
			if err != nil {
				d := form.Draft()
				if serr := db.SaveSupplierDraft(ctx, &d); serr != nil {
					utils.Log.Warnf("Could not save supplier draft: %v", serr)
				}
				return errReported
			}
			if err := db.DeleteSupplierDraft(ctx); err != nil {
				utils.Log.Warnf("Could not clear supplier draft: %v", err)
			}
			if created.ID > 0 {
				render.PrintSupplier(os.Stdout, created)
			}
			return nil
		})
	},
}

// applySupplierFlags copies the given flags onto d. A term the draft rejects
// is reported through n and skipped; malformed flags are errors.
func applySupplierFlags(cmd *cobra.Command, d *supplier.Draft, n supplier.Notifier) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		d.Name, _ = flags.GetString("name")
	}
	if flags.Changed("country") {
		d.Country, _ = flags.GetString("country")
	}
	if flags.Changed("score") {
		text, _ := flags.GetString("score")
		d.SetScoreText(text)
	}
	if flags.Changed("audit") {
		audit, _ := flags.GetString("audit")
		if err := checkDate(audit); err != nil {
			return err
		}
		d.LastAudit = audit
	}
	terms, _ := flags.GetStringArray("term")
	for _, t := range terms {
		key, value, err := parseTermFlag(t)
		if err != nil {
			return err
		}
		if err := d.AddTerm(key, value); err != nil {
			n.Error(fmt.Sprintf("Skipping contract term %q: %v", t, err))
		}
	}
	return nil
}

// parseTermFlag splits "key=value". Only the first '=' separates.
func parseTermFlag(s string) (string, string, error) {
	i := strings.Index(s, "=")
	if i < 0 {
		return "", "", fmt.Errorf("invalid contract term %q, expected key=value", s)
	}
	return s[:i], s[i+1:], nil
}

func init() {
	supplierCmd.AddCommand(supplierCreateCmd)
	supplierCreateCmd.Flags().String("name", "", "Supplier name")
	supplierCreateCmd.Flags().String("country", "", "Supplier country")
	supplierCreateCmd.Flags().StringArray("term", nil, "Contract term as key=value (repeatable)")
	supplierCreateCmd.Flags().String("score", "", "Compliance score (integer, invalid input counts as 0)")
	supplierCreateCmd.Flags().String("audit", "", "Last audit date (YYYY-MM-DD)")
}
