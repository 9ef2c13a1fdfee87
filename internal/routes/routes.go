// Package routes names the navigation targets of the application.
package routes

// Route identifiers.
const (
	Login     = "/"
	Bills     = "#employee/bills"
	NewBill   = "#employee/bill/new"
	Dashboard = "#admin/dashboard"
)

// Navigate moves the user interface to path.
type Navigate func(path string)

// Noop is a Navigate that ignores every request.
func Noop(string) {}

// Recorder is a Navigate target that remembers every requested path.
type Recorder struct {
	Paths []string
}

// Navigate records path.
func (r *Recorder) Navigate(path string) {
	r.Paths = append(r.Paths, path)
}

// Last returns the most recent path, or "" when none was recorded.
func (r *Recorder) Last() string {
	if len(r.Paths) == 0 {
		return ""
	}
	return r.Paths[len(r.Paths)-1]
}
