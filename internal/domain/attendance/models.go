package attendance

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
	StatusLeave   = "Leave"
)

const TimeLayout = "15:04"

type Record struct {
	EmployeeName string `json:"employeeName"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	EmployeeID   int    `json:"employeeId"`
	CheckIn      string `json:"checkIn,omitempty"`
}
