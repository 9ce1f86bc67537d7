package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/anpopa/tkmviewer-sub000/internal/entrypool"
	"github.com/anpopa/tkmviewer-sub000/internal/model"
	"github.com/anpopa/tkmviewer-sub000/internal/summary"

	"github.com/spf13/cobra"
)

func newSessionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sessions <db>",
		Short: "List the sessions recorded in a database",
		Args:  cobra.ExactArgs(1),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.openSessions(args[0]); err != nil {
				return err
			}
			snap := a.ctx.Snapshot()
			return writeSessions(cmd.OutOrStdout(), snap.Sessions, a.ctx.Settings().TimeSource())
		}),
	}
}

func newDumpCmd(a *app) *cobra.Command {
	var variants []string

	cmd := &cobra.Command{
		Use:   "dump <db> <hash> <start> [end]",
		Short: "Load a data window and print its entries",
		Long:  "dump loads the window starting at <start> for session <hash>. Without <end> the window width comes from --interval, capped at the session's last sample.",
		Args:  cobra.RangeArgs(3, 4),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			selected, err := parseVariants(variants)
			if err != nil {
				return err
			}
			if err := a.loadWindow(args[0], args[1:]); err != nil {
				return err
			}

			snap := a.ctx.Snapshot()
			out := cmd.OutOrStdout()
			for _, v := range selected {
				writeVariant(out, &snap, v)
			}
			return nil
		}),
	}
	cmd.Flags().StringSliceVar(&variants, "variant", nil, "variants to print (default all), e.g. cpustat,meminfo")
	return cmd
}

func newSummaryCmd(a *app) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "summary <db> <hash> <start> [end]",
		Short: "Load a data window and print aggregate statistics",
		Args:  cobra.RangeArgs(3, 4),
		RunE: a.run(func(cmd *cobra.Command, args []string) error {
			if err := a.loadWindow(args[0], args[1:]); err != nil {
				return err
			}
			r, err := summary.Build(a.ctx, a.ctx.Snapshot(), top)
			if err != nil {
				return err
			}
			return summary.Write(cmd.OutOrStdout(), r)
		}),
	}
	cmd.Flags().IntVar(&top, "top", 5, "number of processes listed by peak CPU")
	return cmd
}

func newSettingsCmd(a *app) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the effective data settings",
		Long:  "settings prints the time source and interval after applying the settings file, TKMV_* variables and flags. With --save they are written back to the settings file.",
		Args:  cobra.NoArgs,
		RunE: a.run(func(cmd *cobra.Command, _ []string) error {
			s := a.ctx.Settings()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "time_source = %s\n", s.TimeSource())
			fmt.Fprintf(out, "time_interval = %s\n", s.TimeInterval())
			if !save {
				return nil
			}

			s.Store(a.file)
			if err := a.file.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(out, "saved to %s\n", a.configPath)
			return nil
		}),
	}
	cmd.Flags().BoolVar(&save, "save", false, "write the settings back to the settings file")
	return cmd
}

// parseVariants resolves --variant names. No names selects every data variant.
func parseVariants(names []string) ([]model.Variant, error) {
	if len(names) == 0 {
		return model.DataVariants, nil
	}
	out := make([]model.Variant, 0, len(names))
	for _, n := range names {
		v, ok := model.ParseVariant(strings.ToLower(strings.TrimSpace(n)))
		if !ok || v == model.VariantSession {
			return nil, fmt.Errorf("unknown variant %q", n)
		}
		out = append(out, v)
	}
	return out, nil
}

func writeSessions(w io.Writer, sessions []*model.SessionEntry, src model.TimeSource) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HASH\tNAME\tDEVICE\tCORES\tFIRST\tLAST")
	for _, s := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			s.Hash, s.Name, s.Device, s.CoreCount, s.FirstTimestamp(src), s.LastTimestamp(src))
	}
	return tw.Flush()
}

func writeVariant(w io.Writer, s *entrypool.Snapshot, v model.Variant) {
	n, ok := s.Count(v)
	if !ok {
		fmt.Fprintf(w, "# %s: not loaded\n", v)
		return
	}
	fmt.Fprintf(w, "# %s: %d\n", v, n)

	switch v {
	case model.VariantProcInfo:
		writeRows(w, s.ProcInfo)
	case model.VariantCtxInfo:
		writeRows(w, s.CtxInfo)
	case model.VariantProcAcct:
		writeRows(w, s.ProcAcct)
	case model.VariantProcEvent:
		writeRows(w, s.ProcEvent)
	case model.VariantCPUStat:
		writeRows(w, s.CPUStat)
	case model.VariantMemInfo:
		writeRows(w, s.MemInfo)
	case model.VariantPressure:
		writeRows(w, s.Pressure)
	case model.VariantBuddyInfo:
		writeRows(w, s.BuddyInfo)
	case model.VariantWireless:
		writeRows(w, s.Wireless)
	case model.VariantDiskStat:
		writeRows(w, s.DiskStat)
	}
}

func writeRows[T any](w io.Writer, rows []*T) {
	for _, r := range rows {
		fmt.Fprintf(w, "%+v\n", *r)
	}
}
