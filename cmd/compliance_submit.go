package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/storage"
	"github.com/sw33tLie/supplyscope/pkg/submission"
)

var complianceSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and submit a supplier's compliance batch",
	Long: `Submit the saved compliance draft of a supplier. --date and --metric
override the draft; when any --metric is given the flags replace the draft's
entries. A successful submission clears the draft, a failed one keeps it.

The usual metrics are ` + knownMetricsHelp() + `.`,
	Example: `  supplyscope compliance submit -s 4 --date 2024-01-10 --metric "Quality|Pass|compliant"`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		id, err := supplierFlag(cmd)
		if err != nil {
			return err
		}
		date, _ := cmd.Flags().GetString("date")
		if cmd.Flags().Changed("date") {
			if err := checkDate(date); err != nil {
				return err
			}
		}
		metricFlags, _ := cmd.Flags().GetStringArray("metric")
		entries := make([]compliance.Entry, 0, len(metricFlags))
		for _, m := range metricFlags {
			e, err := parseMetricFlag(m)
			if err != nil {
				return err
			}
			warnUnknownMetric(e.Metric)
			entries = append(entries, e)
		}

		client, err := newAPIClient(0)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		return withDB(cmd.Context(), true, func(db *storage.DB) error {
			draft, err := db.LoadComplianceDraft(ctx, id)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("date") {
				draft.Date = date
			}
			if len(entries) > 0 {
				draft.Metrics = compliance.MetricListOf(entries)
			}

			ctrl := submission.New(draft, client,
				submission.WithNotifier(cliNotifier{}),
				submission.WithLogger(utils.Log))
			out, err := ctrl.Submit(ctx)

			switch out.State {
			case submission.Invalid:
				// Keep what was typed so the user can fix it with "compliance draft".
				if serr := db.SaveComplianceDraft(ctx, draft); serr != nil {
					utils.Log.Warnf("Could not save compliance draft: %v", serr)
				}
				return errReported
			case submission.Failed:
				if serr := db.SaveComplianceDraft(ctx, draft); serr != nil {
					utils.Log.Warnf("Could not save compliance draft: %v", serr)
				}
				journal(ctx, db, out)
				return errReported
			case submission.Submitted:
				if derr := db.DeleteComplianceDraft(ctx, id); derr != nil {
					utils.Log.Warnf("Could not clear compliance draft: %v", derr)
				}
				journal(ctx, db, out)
				if out.Narrative != "" {
					fmt.Println()
					fmt.Println(strings.TrimRight(out.Narrative, "\n"))
				}
				return nil
			}
			return err
		})
	},
}

// journal records a sent batch. Journal failures never fail the command.
func journal(ctx context.Context, db *storage.DB, out submission.Outcome) {
	entry := storage.Submission{
		SupplierID:     out.Payload.SupplierID,
		ComplianceDate: out.Payload.ComplianceDate,
		MetricCount:    len(out.Payload.Metrics),
		Outcome:        out.State.String(),
		Message:        out.Message,
	}
	if out.State == submission.Submitted {
		entry.Message = strings.Join(out.Alerts, "; ")
	}
	if body, err := json.Marshal(out.Payload); err == nil {
		entry.RequestBody = string(body)
	}
	if _, err := db.LogSubmission(ctx, entry); err != nil {
		utils.Log.Warnf("Could not record submission: %v", err)
	}
}

func init() {
	complianceCmd.AddCommand(complianceSubmitCmd)
	complianceSubmitCmd.Flags().StringP("supplier", "s", "", "Supplier ID")
	complianceSubmitCmd.Flags().String("date", "", "Compliance date (YYYY-MM-DD)")
	complianceSubmitCmd.Flags().StringArray("metric", nil, `Metric entry as "Metric|Result|status" (repeatable, status defaults to compliant)`)
	complianceSubmitCmd.RegisterFlagCompletionFunc("metric", completeMetricFlag)
}
