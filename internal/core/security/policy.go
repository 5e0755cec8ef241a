package security

import "strings"

// staffEmployees maps staff usernames to the employee ids stamped on their movements.
var staffEmployees = map[string]string{
	"nv1": "NV001",
	"nv2": "NV002",
	"nv3": "NV003",
}

// EmployeeFor returns the employee id bound to a staff username, or "".
// Usernames match case-insensitively.
func EmployeeFor(username string) string {
	return staffEmployees[strings.ToLower(strings.TrimSpace(username))]
}
