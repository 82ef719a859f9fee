package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zulandar/shiftboard/internal/loss"
	"github.com/zulandar/shiftboard/internal/paging"
)

func newReasonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reason",
		Short: "Manage the loss reason catalog",
	}

	cmd.AddCommand(newReasonListCmd())
	cmd.AddCommand(newReasonAddCmd())
	cmd.AddCommand(newReasonRemoveCmd())
	return cmd
}

func newReasonListCmd() *cobra.Command {
	var (
		configPath string
		page       int
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List loss reasons",
		Long:  "Lists loss reasons ordered by id. Output is formatted as a table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReasonList(cmd, configPath, paging.Params{Page: page, Limit: limit})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", paging.LossReasons.DefaultLimit, "reasons per page")
	return cmd
}

func runReasonList(cmd *cobra.Command, configPath string, params paging.Params) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	pg, err := loss.ListReasons(gormDB, params)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(pg.Items) == 0 {
		fmt.Fprintln(out, "No loss reasons found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDEPARTMENT")
	for _, r := range pg.Items {
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.ID, r.Title, r.Department)
	}
	w.Flush()
	fmt.Fprintf(out, "\nPage %d, %d of %d reasons\n", pg.Page, len(pg.Items), pg.Total)
	return nil
}

func newReasonAddCmd() *cobra.Command {
	var (
		configPath string
		in         loss.ReasonInput
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a loss reason",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReasonAdd(cmd, configPath, in)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	cmd.Flags().UintVar(&in.ID, "id", 0, "reason id (required)")
	cmd.Flags().StringVar(&in.Title, "title", "", "reason title (required)")
	cmd.Flags().StringVar(&in.Department, "department", "", "responsible department (required)")
	cmd.MarkFlagRequired("id")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("department")
	return cmd
}

func runReasonAdd(cmd *cobra.Command, configPath string, in loss.ReasonInput) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	r, err := loss.CreateReason(gormDB, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added loss reason %d: %s (%s)\n", r.ID, r.Title, r.Department)
	return nil
}

func newReasonRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an unused loss reason",
		Long:  "Deletes a loss reason. Reasons referenced by any recorded loss cannot be removed.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid reason id %q", args[0])
			}
			return runReasonRemove(cmd, configPath, uint(id))
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfig, "path to shiftboard config file")
	return cmd
}

func runReasonRemove(cmd *cobra.Command, configPath string, id uint) error {
	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	if err := loss.DeleteReason(gormDB, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed loss reason %d\n", id)
	return nil
}
