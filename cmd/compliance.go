package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/render"
	"github.com/sw33tLie/supplyscope/pkg/storage"
)

const dateLayout = "2006-01-02"

var complianceCmd = &cobra.Command{
	Use:   "compliance",
	Short: "Compose and submit compliance metric batches",
}

var complianceDraftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the saved compliance draft of a supplier",
}

var complianceDraftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := supplierFlag(cmd)
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), false, func(db *storage.DB) error {
			d, err := db.LoadComplianceDraft(cmd.Context(), id)
			if err != nil {
				return err
			}
			render.PrintComplianceDraft(os.Stdout, d)
			return nil
		})
	},
}

var complianceDraftAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Append a blank metric entry",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return editComplianceDraft(cmd, func(d *compliance.Draft) error {
			d.Metrics.AddEntry()
			return nil
		})
	},
}

var complianceDraftListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers with a saved compliance draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withDB(cmd.Context(), false, func(db *storage.DB) error {
			ids, err := db.ListComplianceDrafts(cmd.Context())
			if err != nil {
				return err
			}
			if len(ids) == 0 {
				fmt.Println("No compliance drafts saved.")
				return nil
			}
			for _, id := range ids {
				d, err := db.LoadComplianceDraft(cmd.Context(), id)
				if err != nil {
					return err
				}
				date := d.Date
				if date == "" {
					date = "-"
				}
				fmt.Printf("supplier=%d  date=%s  metrics=%d\n", id, date, d.Metrics.Len())
			}
			return nil
		})
	},
}

var complianceDraftSetCmd = &cobra.Command{
	Use:   "set <index> <metric|result|status> <value>",
	Short: "Change one field of one metric entry",
	Long: `Change one field of one metric entry. The usual metrics are
` + knownMetricsHelp() + `; any other non-empty name is accepted too.`,
	Example:           `  supplyscope compliance draft -s 4 set 0 metric "Delivery Time"`,
	Args:              cobra.ExactArgs(3),
	ValidArgsFunction: completeDraftSet,
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry index %q", args[0])
		}
		if compliance.Field(args[1]) == compliance.FieldMetric {
			warnUnknownMetric(args[2])
		}
		return editComplianceDraft(cmd, func(d *compliance.Draft) error {
			if !d.Metrics.UpdateEntry(index, compliance.Field(args[1]), args[2]) {
				utils.Log.Warnf("Entry %d left unchanged (index, field or value not accepted)", index)
			}
			return nil
		})
	},
}

var complianceDraftRmCmd = &cobra.Command{
	Use:   "rm <index>",
	Short: "Remove one metric entry (the last one cannot be removed)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry index %q", args[0])
		}
		return editComplianceDraft(cmd, func(d *compliance.Draft) error {
			if !d.Metrics.RemoveEntry(index) {
				utils.Log.Warnf("Entry %d not removed", index)
			}
			return nil
		})
	},
}

var complianceDraftDateCmd = &cobra.Command{
	Use:   "date <YYYY-MM-DD>",
	Short: "Set the compliance date",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkDate(args[0]); err != nil {
			return err
		}
		return editComplianceDraft(cmd, func(d *compliance.Draft) error {
			d.Date = args[0]
			return nil
		})
	},
}

var complianceDraftResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := supplierFlag(cmd)
		if err != nil {
			return err
		}
		return withDB(cmd.Context(), true, func(db *storage.DB) error {
			return db.DeleteComplianceDraft(cmd.Context(), id)
		})
	},
}

var complianceHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show batches submitted from this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		id := 0
		if cmd.Flags().Changed("supplier") {
			var err error
			if id, err = supplierFlag(cmd); err != nil {
				return err
			}
		}
		limit, _ := cmd.Flags().GetInt("limit")
		return withDB(cmd.Context(), false, func(db *storage.DB) error {
			subs, err := db.ListSubmissions(cmd.Context(), id, limit)
			if err != nil {
				return err
			}
			for _, s := range subs {
				fmt.Printf("%s  %-9s  supplier=%d  date=%s  metrics=%d  %s\n",
					s.SubmittedAt.Format("2006-01-02 15:04:05"), s.Outcome, s.SupplierID, s.ComplianceDate, s.MetricCount, s.Message)
			}
			return nil
		})
	},
}

// editComplianceDraft loads, edits and saves a supplier's draft, then prints it.
func editComplianceDraft(cmd *cobra.Command, fn func(d *compliance.Draft) error) error {
	id, err := supplierFlag(cmd)
	if err != nil {
		return err
	}
	return withDB(cmd.Context(), true, func(db *storage.DB) error {
		ctx := cmd.Context()
		d, err := db.LoadComplianceDraft(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(d); err != nil {
			return err
		}
		if err := db.SaveComplianceDraft(ctx, d); err != nil {
			return err
		}
		render.PrintComplianceDraft(os.Stdout, d)
		return nil
	})
}

func supplierFlag(cmd *cobra.Command) (int, error) {
	text, _ := cmd.Flags().GetString("supplier")
	return utils.ParseID(text)
}

// parseMetricFlag reads "Metric|Result" or "Metric|Result|status".
func parseMetricFlag(s string) (compliance.Entry, error) {
	parts := strings.Split(s, "|")
	if len(parts) < 2 || len(parts) > 3 {
		return compliance.Entry{}, fmt.Errorf("invalid metric %q, expected Metric|Result[|status]", s)
	}
	e := compliance.Entry{Metric: parts[0], Result: parts[1], Status: compliance.StatusCompliant}
	if len(parts) == 3 && strings.TrimSpace(parts[2]) != "" {
		status, ok := compliance.ParseStatus(parts[2])
		if !ok {
			return compliance.Entry{}, fmt.Errorf("invalid status %q, expected %s or %s", parts[2], compliance.StatusCompliant, compliance.StatusNonCompliant)
		}
		e.Status = status
	}
	return e, nil
}

// knownMetricsHelp renders KnownMetrics for help text.
func knownMetricsHelp() string {
	quoted := make([]string, len(compliance.KnownMetrics))
	for i, m := range compliance.KnownMetrics {
		quoted[i] = strconv.Quote(m)
	}
	return strings.Join(quoted, " and ")
}

// warnUnknownMetric logs a warning for a metric name outside KnownMetrics and
// reports whether it did. Empty names are left to validation.
func warnUnknownMetric(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" || compliance.IsKnownMetric(name) {
		return false
	}
	utils.Log.Warnf("%q is not a standard metric (%s), submitting it anyway", name, knownMetricsHelp())
	return true
}

func completeDraftSet(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 1:
		return []string{string(compliance.FieldMetric), string(compliance.FieldResult), string(compliance.FieldStatus)}, cobra.ShellCompDirectiveNoFileComp
	case 2:
		switch compliance.Field(args[1]) {
		case compliance.FieldMetric:
			return compliance.KnownMetrics, cobra.ShellCompDirectiveNoFileComp
		case compliance.FieldStatus:
			return []string{string(compliance.StatusCompliant), string(compliance.StatusNonCompliant)}, cobra.ShellCompDirectiveNoFileComp
		}
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}

// completeMetricFlag offers "Metric|" prefixes for --metric.
func completeMetricFlag(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	out := make([]string, len(compliance.KnownMetrics))
	for i, m := range compliance.KnownMetrics {
		out[i] = m + "|"
	}
	return out, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
}

func checkDate(s string) error {
	if _, err := time.Parse(dateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(complianceCmd)
	complianceCmd.AddCommand(complianceDraftCmd)
	complianceCmd.AddCommand(complianceHistoryCmd)
	complianceDraftCmd.AddCommand(complianceDraftShowCmd)
	complianceDraftCmd.AddCommand(complianceDraftListCmd)
	complianceDraftCmd.AddCommand(complianceDraftAddCmd)
	complianceDraftCmd.AddCommand(complianceDraftSetCmd)
	complianceDraftCmd.AddCommand(complianceDraftRmCmd)
	complianceDraftCmd.AddCommand(complianceDraftDateCmd)
	complianceDraftCmd.AddCommand(complianceDraftResetCmd)

	complianceDraftCmd.PersistentFlags().StringP("supplier", "s", "", "Supplier ID")
	complianceHistoryCmd.Flags().StringP("supplier", "s", "", "Only show this supplier")
	complianceHistoryCmd.Flags().Int("limit", 50, "Number of entries to show")
}
