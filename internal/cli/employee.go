package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"smarthr/internal/app/session"
	"smarthr/internal/domain/core"
	"smarthr/internal/domain/payroll"
)

func newEmployeeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "employee",
		Aliases: []string{"employees"},
		Short:   "List, add and remove employees",
	}
	cmd.AddCommand(newEmployeeListCommand(opts))
	cmd.AddCommand(newEmployeeAddCommand(opts))
	cmd.AddCommand(newEmployeeRemoveCommand(opts))
	return cmd
}

func newEmployeeListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List employees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()
			if err := sess.EmployeesReady(); err != nil {
				return failed("list employees", err)
			}

			employees := sess.Employees()
			return opts.formatter(cmd).Success(employees, func(w io.Writer) {
				writeEmployees(w, employees)
			})
		},
	}
}

func writeEmployees(w io.Writer, employees []core.Employee) {
	if len(employees) == 0 {
		fmt.Fprintln(w, "No employees found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPOSITION\tDEPARTMENT\tSALARY\tLEAVE")
	for _, e := range employees {
		fmt.Fprintf(tw, "%04d\t%s\t%s\t%s\t%s\t%d\n", e.ID, e.Name, e.Position, e.Department, payroll.Money(e.Salary), e.LeaveBalance)
	}
	_ = tw.Flush()
}

func newEmployeeAddCommand(opts *RootOptions) *cobra.Command {
	draft := core.NewEmployee(0, "", "", "", 0)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			emp, err := sess.AddEmployee(cmd.Context(), draft)
			if err != nil {
				return failed("employee add", err)
			}
			return opts.formatter(cmd).Success(emp, func(w io.Writer) {
				fmt.Fprintf(w, "Added employee %04d %s\n", emp.ID, emp.Name)
			})
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&draft.Name, "name", "", "full name")
	flags.StringVar(&draft.Position, "position", "", "position")
	flags.StringVar(&draft.Department, "department", "", "department")
	flags.Float64Var(&draft.Salary, "salary", 0, "annual salary")
	flags.IntVar(&draft.LeaveBalance, "leave-balance", core.DefaultLeaveBalance, "leave balance in days")
	flags.IntVar(&draft.ExpectedMonthlyWorkingDays, "working-days", core.DefaultExpectedWorkingDays, "expected working days per month")
	flags.Float64Var(&draft.InsuranceRate, "insurance-rate", core.DefaultInsuranceRate, "insurance rate as a fraction")
	flags.Float64Var(&draft.TaxRate, "tax-rate", core.DefaultTaxRate, "tax rate as a fraction")
	flags.BoolVar(&draft.HasHealthInsurance, "health", false, "enrol in health insurance")
	flags.BoolVar(&draft.HasDentalInsurance, "dental", false, "enrol in dental insurance")
	flags.BoolVar(&draft.HasVisionInsurance, "vision", false, "enrol in vision insurance")
	flags.BoolVar(&draft.HasSuperannuation, "super", false, "enrol in superannuation")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newEmployeeRemoveCommand(opts *RootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an employee and every record that belongs to them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid employee id %q", args[0]))
			}
			sess, closeFn, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			emp, err := sess.Employee(id)
			if err != nil {
				return failed("employee remove", err)
			}
			confirm := yes
			if !confirm {
				in := bufio.NewReader(cmd.InOrStdin())
				confirm = confirmPrompt(cmd, in, fmt.Sprintf("Remove %s and all related records?", emp.Name))
			}
			removal, err := sess.RemoveEmployee(cmd.Context(), id, confirm)
			if err != nil {
				return failed("employee remove", err)
			}
			return opts.formatter(cmd).Success(removal, func(w io.Writer) {
				writeRemoval(w, removal)
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "remove without asking")
	return cmd
}

func writeRemoval(w io.Writer, r session.Removal) {
	fmt.Fprintf(w, "Removed employee %04d %s\n", r.Employee.ID, r.Employee.Name)
	fmt.Fprintf(w, "  users: %d, history: %d, leave: %d, attendance: %d, payroll: %d\n",
		r.Users, r.History, r.Leaves, r.Attendance, r.Payroll)
	if r.Archived > 0 {
		fmt.Fprintf(w, "  archived payroll rows: %d\n", r.Archived)
	}
}
