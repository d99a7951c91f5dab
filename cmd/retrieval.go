package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sw33tLie/supplyscope/internal/utils"
	"github.com/sw33tLie/supplyscope/pkg/compliance"
	"github.com/sw33tLie/supplyscope/pkg/render"
	"github.com/sw33tLie/supplyscope/pkg/retrieval"
	"github.com/sw33tLie/supplyscope/pkg/storage"
)

var insightsCmd = &cobra.Command{
	Use:   "insights <id>",
	Short: "Show the AI compliance insights of a supplier",
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

		overlay := retrieval.NewInsights(client, utils.Log)
		overlay.Open(ctx, id)
		view, err := overlay.Wait(ctx)
		if err != nil {
			return err
		}
		return showInsights(view)
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records <id>",
	Short: "Show the compliance history of a supplier, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idArg(args)
		if err != nil {
			return err
		}
		local, _ := cmd.Flags().GetBool("local")
		if local {
			return withDB(cmd.Context(), false, func(db *storage.DB) error {
				records, err := db.ListRecords(cmd.Context(), id)
				if err != nil {
					return err
				}
				return showRecords(retrieval.View[[]compliance.Record]{State: retrieval.Loaded, Visible: true, SupplierID: id, Data: records, Message: emptyRecordsMessage(records)})
			})
		}

		client, err := newAPIClient(0)
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		overlay := retrieval.NewRecords(client, utils.Log)
		overlay.Open(ctx, id)
		view, err := overlay.Wait(ctx)
		if err != nil {
			return err
		}
		return showRecords(view)
	},
}

var overviewCmd = &cobra.Command{
	Use:   "overview <id>",
	Short: "Fetch insights and compliance records of a supplier at the same time",
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

		insights := retrieval.NewInsights(client, utils.Log)
		records := retrieval.NewRecords(client, utils.Log)
		insights.Open(ctx, id)
		records.Open(ctx, id)

		insightView, ierr := insights.Wait(ctx)
		recordView, rerr := records.Wait(ctx)
		if ierr != nil {
			return ierr
		}
		if rerr != nil {
			return rerr
		}

		fmt.Printf("== Insights for supplier %d ==\n", id)
		ierr = showInsights(insightView)
		fmt.Printf("\n== Compliance records for supplier %d ==\n", id)
		rerr = showRecords(recordView)
		if ierr != nil || rerr != nil {
			return errReported
		}
		return nil
	},
}

func showInsights(v retrieval.View[string]) error {
	switch v.State {
	case retrieval.Errored:
		fmt.Fprintln(os.Stderr, v.Message)
		return errReported
	case retrieval.Loaded:
		if v.Empty() {
			fmt.Println(v.Message)
			return nil
		}
		render.PrintInsights(os.Stdout, v.Data)
	}
	return nil
}

func showRecords(v retrieval.View[[]compliance.Record]) error {
	switch v.State {
	case retrieval.Errored:
		fmt.Fprintln(os.Stderr, v.Message)
		return errReported
	case retrieval.Loaded:
		if v.Empty() {
			fmt.Println(v.Message)
			return nil
		}
		render.PrintRecords(os.Stdout, v.Data)
	}
	return nil
}

func emptyRecordsMessage(records []compliance.Record) string {
	if len(records) == 0 {
		return retrieval.NoRecordsMessage
	}
	return ""
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(overviewCmd)
	recordsCmd.Flags().Bool("local", false, "Read from the local mirror instead of the backend")
}
