package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prepkitchen/label-cli/internal/model"
)

var (
	tasksLimit    int
	tasksDecision string
	tasksReviewer string
	tasksNotes    string
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Work the verification queue",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List open verification tasks",
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

		tasks, err := st.ListOpenTasks(ctx, tasksLimit)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("Queue is empty.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tTYPE\tSEVERITY\tPRODUCT\tTITLE\tCREATED AT")
		_, _ = fmt.Fprintln(w, "--\t----\t--------\t-------\t-----\t----------")
		for _, t := range tasks {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				truncateID(t.ID), t.TaskType, t.Severity, t.ProductID,
				t.Title, t.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var tasksResolveCmd = &cobra.Command{
	Use:   "resolve <task-id>",
	Short: "Record a decision on a task and close it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if tasksReviewer == "" {
			return eris.New("tasks: --reviewer is required")
		}
		status := model.TaskResolved
		if tasksDecision == "approve" {
			status = model.TaskApproved
		}

		ctx := cmd.Context()
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		if err := st.AddReview(ctx, &model.VerificationReview{
			TaskID:     args[0],
			ReviewedBy: tasksReviewer,
			Decision:   tasksDecision,
			Notes:      tasksNotes,
		}); err != nil {
			return err
		}
		if err := st.ResolveTask(ctx, args[0], status); err != nil {
			return err
		}
		fmt.Printf("Task %s: %s by %s\n", truncateID(args[0]), status, tasksReviewer)
		return nil
	},
}

func init() {
	tasksListCmd.Flags().IntVar(&tasksLimit, "limit", 50, "maximum rows")
	tasksResolveCmd.Flags().StringVar(&tasksDecision, "decision", "resolve", "decision to record (approve or resolve)")
	tasksResolveCmd.Flags().StringVar(&tasksReviewer, "reviewer", "", "reviewer recorded on the decision")
	tasksResolveCmd.Flags().StringVar(&tasksNotes, "notes", "", "free-form review notes")
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksResolveCmd)
	rootCmd.AddCommand(tasksCmd)
}
