package cli

import (
	"fmt"

	"quizdesk/internal/config"
	"quizdesk/internal/record"
	"quizdesk/internal/store"
	"github.com/spf13/cobra"
)

// NewResultsCmd groups the admin operations on the result log.
func NewResultsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Browse, export, or clear the saved results",
	}
	cmd.AddCommand(newResultsListCmd(configPath))
	cmd.AddCommand(newResultsExportCmd(configPath))
	cmd.AddCommand(newResultsClearCmd(configPath))
	return cmd
}

func newResultsListCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print all saved results",
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := resultLog(*configPath)
			if err != nil {
				return err
			}
			rows, err := results.LoadAll()
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("no results recorded")
				return nil
			}
			for _, r := range rows {
				fmt.Printf("%s  %s <%s>  %d%% (%d/%d)\n",
					r.Timestamp.Format(record.TimeLayout), r.Name, r.Email,
					r.ScorePercent, r.CorrectCount, r.TotalQuestions)
			}
			return nil
		},
	}
}

func newResultsExportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "export <destination>",
		Short: "Copy the result log byte-for-byte to a destination file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results, err := resultLog(*configPath)
			if err != nil {
				return err
			}
			if err := results.ExportCopy(args[0]); err != nil {
				return err
			}
			fmt.Printf("exported to %s\n", args[0])
			return nil
		},
	}
}

func newResultsClearCmd(configPath *string) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved results (irreversible)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to delete results without --yes")
			}
			results, err := resultLog(*configPath)
			if err != nil {
				return err
			}
			if err := results.ClearAll(); err != nil {
				return err
			}
			fmt.Println("results cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deletion")
	return cmd
}

func resultLog(configPath string) (*store.FileStore, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	path := cfg.Results.Path
	if path == "" {
		path = "results.csv"
	}
	return store.NewFileStore(path), nil
}
