// Package sysopen reveals directories in the operating system's file
// manager.
package sysopen

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// OpenDir opens the given directory in the platform file manager. The
// directory must exist.
func OpenDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dir)
	case "windows":
		cmd = exec.Command("explorer", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", dir, err)
	}
	// The file manager keeps running; don't wait for it.
	go cmd.Wait()
	return nil
}
