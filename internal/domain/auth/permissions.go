package auth

const (
	PermEmployeesRead   = "employees.read"
	PermEmployeesWrite  = "employees.write"
	PermEmployeesDelete = "employees.delete"
	PermUsersWrite      = "users.write"
	PermHistoryRead     = "history.read"
	PermAttendanceRead  = "attendance.read"
	PermAttendanceWrite = "attendance.write"
	PermLeaveRequest    = "leave.request"
	PermLeaveRead       = "leave.read"
	PermLeaveApprove    = "leave.approve"
	PermPayrollRead     = "payroll.read"
	PermPayrollRun      = "payroll.run"
	PermPayrollSelf     = "payroll.self"
)

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermEmployeesDelete,
		PermUsersWrite,
		PermHistoryRead,
		PermLeaveRead,
	},
	RoleHR: {
		PermEmployeesRead,
		PermEmployeesWrite,
		PermHistoryRead,
		PermAttendanceRead,
		PermLeaveRead,
		PermLeaveApprove,
		PermPayrollRead,
		PermPayrollRun,
	},
	RoleEmployee: {
		PermAttendanceWrite,
		PermLeaveRequest,
		PermPayrollSelf,
	},
}

func HasPermission(role, permission string) bool {
	canonical, ok := NormalizeRole(role)
	if !ok {
		return false
	}
	for _, p := range RolePermissions[canonical] {
		if p == permission {
			return true
		}
	}
	return false
}
