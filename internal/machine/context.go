package machine

import (
	"os"
	"runtime"
	"strconv"
)

// Context represents the machine pytutor runs on
type Context struct {
	OS           string
	Architecture string
	GoVersion    string
	NumCPU       int
	Shell        string
}

// NewContext creates a new machine context
func NewContext() *Context {
	return &Context{
		OS:           runtime.GOOS,
		Architecture: runtime.GOARCH,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		Shell:        os.Getenv("SHELL"),
	}
}

// GetSystemInfo returns the system information as ordered label/value rows
func (c *Context) GetSystemInfo() [][2]string {
	rows := [][2]string{
		{"OS", c.OS},
		{"Arch", c.Architecture},
		{"Go", c.GoVersion},
		{"CPUs", strconv.Itoa(c.NumCPU)},
	}
	if c.Shell != "" {
		rows = append(rows, [2]string{"Shell", c.Shell})
	}
	return rows
}
