package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/payroll"
)

func newPayrollCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payroll",
		Short: "Compute, list and export payroll records",
	}
	cmd.AddCommand(newPayrollComputeCommand(opts))
	cmd.AddCommand(newPayrollGenerateCommand(opts))
	cmd.AddCommand(newPayrollShowCommand(opts))
	cmd.AddCommand(newPayrollSummaryCommand(opts))
	cmd.AddCommand(newPayrollPayslipCommand(opts))
	cmd.AddCommand(newPayrollArchiveCommand(opts))
	return cmd
}

type computeFlags struct {
	employeeID int
	month      string
	daysWorked int
	bonus      float64
	onExisting string
}

func newPayrollComputeCommand(opts *RootOptions) *cobra.Command {
	f := &computeFlags{}
	cmd := &cobra.Command{
		Use:   "compute",
		Short: "Compute one employee's payroll for a month",
		Long: `Compute one employee's payroll for a month from days worked and bonus.

When a record already exists for the employee and month, --on-existing picks
view, regenerate or cancel; without it the command asks on the terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPayrollCompute(cmd, opts, f)
		},
	}
	cmd.Flags().IntVar(&f.employeeID, "employee", 0, "employee ID")
	cmd.Flags().StringVar(&f.month, "month", "", "month as YYYY-MM")
	cmd.Flags().IntVar(&f.daysWorked, "days-worked", 0, "days worked in the month")
	cmd.Flags().Float64Var(&f.bonus, "bonus", 0, "bonus amount")
	cmd.Flags().StringVar(&f.onExisting, "on-existing", "", "view|regenerate|cancel when a record exists")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func runPayrollCompute(cmd *cobra.Command, opts *RootOptions, f *computeFlags) error {
	resolve, err := resolverFor(cmd, f.onExisting)
	if err != nil {
		return err
	}
	sess, closeFn, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer closeFn()

	rec, outcome, err := sess.ComputePayroll(cmd.Context(), f.employeeID, f.month, f.daysWorked, f.bonus, resolve)
	if errors.Is(err, payroll.ErrCancelled) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Payroll computation cancelled. Existing record kept.")
		return WrapExitError(ExitFailure, "payroll compute", err)
	}
	if err != nil {
		return failed("payroll compute", err)
	}
	out := opts.formatter(cmd)
	return out.Success(map[string]any{"record": rec, "outcome": outcome}, func(w io.Writer) {
		fmt.Fprintln(w, payroll.Format(rec))
	})
}

// resolverFor maps --on-existing to a resolver; an empty flag asks on stdin.
func resolverFor(cmd *cobra.Command, onExisting string) (payroll.Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(onExisting)) {
	case "view":
		return func(payroll.Record) payroll.Resolution { return payroll.ResolutionView }, nil
	case "regenerate":
		return func(payroll.Record) payroll.Resolution { return payroll.ResolutionRegenerate }, nil
	case "cancel":
		return func(payroll.Record) payroll.Resolution { return payroll.ResolutionCancel }, nil
	case "":
		in := bufio.NewReader(cmd.InOrStdin())
		return func(existing payroll.Record) payroll.Resolution {
			question := fmt.Sprintf("Payroll for employee %d in %s already exists. [V]iew, [R]egenerate or [C]ancel? ", existing.EmployeeID, existing.Month)
			switch strings.ToLower(prompt(cmd, in, question)) {
			case "v", "view":
				return payroll.ResolutionView
			case "r", "regenerate":
				return payroll.ResolutionRegenerate
			}
			return payroll.ResolutionCancel
		}, nil
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --on-existing %q: must be view, regenerate or cancel", onExisting))
}

func newPayrollGenerateCommand(opts *RootOptions) *cobra.Command {
	var (
		month string
		yes   bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate payroll for every employee for a month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			in := bufio.NewReader(cmd.InOrStdin())
			confirm := func(m string, existing int) bool {
				if yes {
					return true
				}
				return confirmPrompt(cmd, in, fmt.Sprintf("Payroll for %s already has %d record(s). Regenerate all?", m, existing))
			}
			result, err := sess.GenerateMonthlyPayroll(cmd.Context(), month, confirm)
			if errors.Is(err, payroll.ErrCancelled) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Payroll generation cancelled.")
				return WrapExitError(ExitFailure, "payroll generate", err)
			}
			if err != nil {
				return failed("payroll generate", err)
			}
			if err := opts.formatter(cmd).Success(result, func(w io.Writer) {
				writeBatch(w, result)
			}); err != nil {
				return err
			}
			if result.Failed() > 0 {
				return NewExitError(ExitFailure, fmt.Sprintf("%d employee(s) failed", result.Failed()))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "replace existing records without asking")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func writeBatch(w io.Writer, result payroll.BatchResult) {
	fmt.Fprintf(w, "Payroll for %s: %d generated, %d failed", result.Month, result.Generated, result.Failed())
	if result.Replaced > 0 {
		fmt.Fprintf(w, ", %d replaced", result.Replaced)
	}
	fmt.Fprintln(w)
	for _, f := range result.Failures {
		fmt.Fprintf(w, "  %04d %s: %s\n", f.EmployeeID, f.Name, f.Reason)
	}
}

func newPayrollShowCommand(opts *RootOptions) *cobra.Command {
	var q session.PayrollQuery
	cmd := &cobra.Command{
		Use:   "show",
		Short: "List payroll records by employee, month or month range",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			records, err := sess.PayrollRecords(q)
			if err != nil {
				return failed("payroll show", err)
			}
			return opts.formatter(cmd).Success(records, func(w io.Writer) {
				writeRecords(w, records)
			})
		},
	}
	cmd.Flags().IntVar(&q.EmployeeID, "employee", core.NoEmployeeID, "employee ID")
	cmd.Flags().StringVar(&q.Month, "month", "", "month as YYYY-MM")
	cmd.Flags().StringVar(&q.From, "from", "", "first month of a range")
	cmd.Flags().StringVar(&q.To, "to", "", "last month of a range")
	return cmd
}

func writeRecords(w io.Writer, records []payroll.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No payroll records found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPLOYEE\tMONTH\tWORKED\tLEAVE\tBASE\tBONUS\tINSURANCE\tTAX\tNET\tSUPER")
	for _, r := range records {
		fmt.Fprintf(tw, "%04d\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.EmployeeID, r.Month, r.DaysWorked, r.DaysOnLeave,
			payroll.Money(r.BaseSalary), payroll.Money(r.Bonus), payroll.Money(r.InsuranceDeduction),
			payroll.Money(r.TaxDeduction), payroll.Money(r.NetPay), payroll.Money(r.Superannuation))
	}
	_ = tw.Flush()
}

func newPayrollSummaryCommand(opts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Total one month's payroll",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			summary, err := sess.MonthSummary(month)
			if err != nil {
				return failed("payroll summary", err)
			}
			return opts.formatter(cmd).Success(summary, func(w io.Writer) {
				fmt.Fprintf(w, "Payroll summary for %s (%d employees)\n", summary.Month, summary.Employees)
				fmt.Fprintf(w, "Base Salary: $%s\n", summary.TotalBase.StringFixed(2))
				fmt.Fprintf(w, "Bonus: $%s\n", summary.TotalBonus.StringFixed(2))
				fmt.Fprintf(w, "Insurance: $%s\n", summary.TotalInsurance.StringFixed(2))
				fmt.Fprintf(w, "Tax: $%s\n", summary.TotalTax.StringFixed(2))
				fmt.Fprintf(w, "Superannuation: $%s\n", summary.TotalSuperannuation.StringFixed(2))
				fmt.Fprintf(w, "Net Pay: $%s\n", summary.TotalNet.StringFixed(2))
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func newPayrollPayslipCommand(opts *RootOptions) *cobra.Command {
	var (
		employeeID int
		month      string
	)
	cmd := &cobra.Command{
		Use:   "payslip",
		Short: "Write a PDF payslip for one payroll record",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			path, err := sess.WritePayslip(employeeID, month)
			if err != nil {
				return failed("payroll payslip", err)
			}
			return opts.formatter(cmd).Success(map[string]string{"path": path}, func(w io.Writer) {
				fmt.Fprintf(w, "Payslip written to %s\n", path)
			})
		},
	}
	cmd.Flags().IntVar(&employeeID, "employee", 0, "employee ID")
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	_ = cmd.MarkFlagRequired("employee")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}

func newPayrollArchiveCommand(opts *RootOptions) *cobra.Command {
	var month string
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Mirror one month of payroll into the archive database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			n, err := sess.ArchiveMonth(cmd.Context(), month)
			if err != nil {
				return failed("payroll archive", err)
			}
			return opts.formatter(cmd).Success(map[string]any{"month": month, "archived": n}, func(w io.Writer) {
				fmt.Fprintf(w, "Archived %d record(s) for %s\n", n, month)
			})
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "month as YYYY-MM")
	_ = cmd.MarkFlagRequired("month")
	return cmd
}
