package extractor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// linuxManagers in probe order; the first one on PATH wins.
var linuxManagers = []struct {
	binary string
	args   []string
}{
	{"apt", []string{"install", "-y", "poppler-utils"}},
	{"dnf", []string{"install", "-y", "poppler-utils"}},
	{"yum", []string{"install", "-y", "poppler-utils"}},
	{"pacman", []string{"-S", "--noconfirm", "poppler"}},
}

// Install installs poppler with the system package manager. It needs
// elevated privileges on Linux; the command is run through sudo and
// may prompt for a password on the terminal.
func Install(ctx context.Context) error {
	switch runtime.GOOS {
	case "linux":
		return installLinux(ctx)
	case "darwin":
		return installDarwin(ctx)
	default:
		return fmt.Errorf("automatic poppler install is not supported on %s; please install poppler manually", runtime.GOOS)
	}
}

func installLinux(ctx context.Context) error {
	for _, mgr := range linuxManagers {
		if _, err := exec.LookPath(mgr.binary); err != nil {
			continue
		}

		args := append([]string{mgr.binary}, mgr.args...)
		cmd := exec.CommandContext(ctx, "sudo", args...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("failed to install poppler with %s: %w", mgr.binary, err)
		}
		return nil
	}
	return fmt.Errorf("no supported package manager found (tried apt, dnf, yum, pacman)")
}

func installDarwin(ctx context.Context) error {
	if _, err := exec.LookPath("brew"); err != nil {
		return fmt.Errorf("homebrew not found; install it from https://brew.sh and re-run 'pdftran install'")
	}

	cmd := exec.CommandContext(ctx, "brew", "install", "poppler")
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to install poppler with brew: %w", err)
	}
	return nil
}
