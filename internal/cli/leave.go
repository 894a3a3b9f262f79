package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smarthr/internal/domain/core"
	"smarthr/internal/domain/leave"
	"smarthr/internal/platform/flatfile"
)

func newLeaveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leave",
		Short: "Review and decide leave requests",
	}
	cmd.AddCommand(newLeaveListCommand(opts))
	cmd.AddCommand(newLeaveDecideCommand(opts, true))
	cmd.AddCommand(newLeaveDecideCommand(opts, false))
	return cmd
}

func newLeaveListCommand(opts *RootOptions) *cobra.Command {
	var (
		employeeID int
		status     string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List leave requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			requests, err := sess.Leaves(employeeID, status)
			if err != nil {
				return failed("leave list", err)
			}
			return opts.formatter(cmd).Success(requests, func(w io.Writer) {
				writeLeaves(w, requests)
			})
		},
	}
	cmd.Flags().IntVar(&employeeID, "employee", core.NoEmployeeID, "only this employee's requests")
	cmd.Flags().StringVar(&status, "status", "", "Pending, Approved or Rejected")
	return cmd
}

func writeLeaves(w io.Writer, requests leave.Requests) {
	if len(requests) == 0 {
		fmt.Fprintln(w, "No leave requests found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tEMPLOYEE\tDAYS\tSTATUS\tDATE\tREASON")
	for _, r := range requests {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\t%s\n", r.ID, r.EmployeeName, r.DaysRequested, r.Status, r.RequestDate.Format(flatfile.DateLayout), r.Reason)
	}
	_ = tw.Flush()
}

func newLeaveDecideCommand(opts *RootOptions, approve bool) *cobra.Command {
	use, short := "reject <id>", "Reject a pending leave request"
	if approve {
		use, short = "approve <id>", "Approve a pending leave request and debit the balance"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid request id %q", args[0]))
			}
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := sess.DecideLeave(cmd.Context(), id, approve)
			if err != nil {
				return failed("leave decision", err)
			}
			return opts.formatter(cmd).Success(req, func(w io.Writer) {
				fmt.Fprintf(w, "Leave request %d for %s is now %s\n", req.ID, req.EmployeeName, req.Status)
			})
		},
	}
}
