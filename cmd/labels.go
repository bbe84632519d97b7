package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/prepkitchen/label-cli/internal/model"
	"github.com/prepkitchen/label-cli/internal/store"
)

var (
	labelsType  string
	labelsRef   string
	labelsLimit int
)

var labelsCmd = &cobra.Command{
	Use:   "labels",
	Short: "Inspect frozen label snapshots and their lineage",
}

var labelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List frozen label snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snaps, err := st.ListSnapshots(ctx, store.SnapshotFilter{
			LabelType:     model.LabelType(labelsType),
			ExternalRefID: labelsRef,
			Limit:         labelsLimit,
		})
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No snapshots found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tTYPE\tREF\tVER\tTITLE\tFROZEN AT\tBY")
		_, _ = fmt.Fprintln(w, "--\t----\t---\t---\t-----\t---------\t--")
		for _, s := range snaps {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
				truncateID(s.ID), s.LabelType, s.ExternalRefID, s.Version,
				s.Title, s.FrozenAt.Format("2006-01-02 15:04"), s.CreatedBy)
		}
		return w.Flush()
	},
}

var labelsShowCmd = &cobra.Command{
	Use:   "show <snapshot-id>",
	Short: "Print one snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		snap, err := st.GetSnapshot(ctx, args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

var labelsLineageCmd = &cobra.Command{
	Use:   "lineage <snapshot-id>",
	Short: "List every lineage edge touching a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		edges, err := st.ListLineage(ctx, args[0])
		if err != nil {
			return err
		}
		if len(edges) == 0 {
			fmt.Println("No lineage edges found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PARENT\tEDGE\tCHILD\tCREATED AT\tBY")
		_, _ = fmt.Fprintln(w, "------\t----\t-----\t----------\t--")
		for _, e := range edges {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncateID(e.ParentLabelID), e.EdgeType, truncateID(e.ChildLabelID),
				e.CreatedAt.Format("2006-01-02 15:04"), e.CreatedBy)
		}
		return w.Flush()
	},
}

func init() {
	labelsListCmd.Flags().StringVar(&labelsType, "type", "", "filter by label type (SKU, INGREDIENT, PRODUCT, LOT)")
	labelsListCmd.Flags().StringVar(&labelsRef, "ref", "", "filter by external reference ID")
	labelsListCmd.Flags().IntVar(&labelsLimit, "limit", 50, "maximum rows")
	labelsCmd.AddCommand(labelsListCmd)
	labelsCmd.AddCommand(labelsShowCmd)
	labelsCmd.AddCommand(labelsLineageCmd)
	rootCmd.AddCommand(labelsCmd)
}
