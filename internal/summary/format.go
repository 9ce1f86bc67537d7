package summary

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/anpopa/tkmviewer-sub000/internal/model"
)

// Write renders r as aligned plain text.
func Write(w io.Writer, r *Report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if s := r.Session; s != nil {
		fmt.Fprintf(tw, "Session:\t%s (%s)\n", s.Name, s.Hash)
		fmt.Fprintf(tw, "Device:\t%s, %d cores\n", s.Device, s.CoreCount)
	}

	fmt.Fprintln(tw, "Entries:")
	for _, v := range model.DataVariants {
		n, ok := r.Counts[v]
		if !ok {
			fmt.Fprintf(tw, "  %s\t-\n", v)
			continue
		}
		fmt.Fprintf(tw, "  %s\t%d\n", v, n)
	}

	if r.CPU.All.Count > 0 {
		fmt.Fprintf(tw, "CPU all %%:\tmin %d\tavg %.1f\tmax %d\n", r.CPU.All.Min, r.CPU.All.Avg, r.CPU.All.Max)
		fmt.Fprintf(tw, "CPU sys %%:\tmin %d\tavg %.1f\tmax %d\n", r.CPU.Sys.Min, r.CPU.Sys.Avg, r.CPU.Sys.Max)
		fmt.Fprintf(tw, "CPU usr %%:\tmin %d\tavg %.1f\tmax %d\n", r.CPU.Usr.Min, r.CPU.Usr.Avg, r.CPU.Usr.Max)
	}
	if r.Memory.AvailPercent.Count > 0 {
		m := r.Memory.AvailPercent
		fmt.Fprintf(tw, "Mem avail %%:\tmin %d\tavg %.1f\tmax %d\n", m.Min, m.Avg, m.Max)
	}
	if r.Pressure.Samples > 0 {
		fmt.Fprintf(tw, "PSI some avg10 max:\tcpu %.2f\tmem %.2f\tio %.2f\n", r.Pressure.CPU, r.Pressure.Memory, r.Pressure.IO)
	}
	fmt.Fprintf(tw, "Process events:\tforks %d\texecs %d\texits %d\n", r.Events.Forks, r.Events.Execs, r.Events.Exits)

	if len(r.TopProcesses) > 0 {
		fmt.Fprintln(tw, "Top processes:")
		for _, p := range r.TopProcesses {
			fmt.Fprintf(tw, "  %s\tpid %d\tcpu %d%%\trss %d\n", p.Name, p.PID, p.CPUPercent, p.VmRSS)
		}
	}
	if len(r.Disks) > 0 {
		fmt.Fprintln(tw, "Disks:")
		for _, d := range r.Disks {
			fmt.Fprintf(tw, "  %s\treads %d\twrites %d\tio %dms\n", d.Name, d.Reads, d.Writes, d.IOMs)
		}
	}

	return tw.Flush()
}
