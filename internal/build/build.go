// Package build drives the external toolchain: nasm for assembling, then a
// platform linker. It only runs when the user asks for a binary; the
// compiler itself never shells out.
package build

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// ObjectFormat maps a target to the nasm output format.
func ObjectFormat(target string) string {
	switch target {
	case "windows":
		return "win64"
	case "macos":
		return "macho64"
	default:
		return "elf64"
	}
}

func assembleArgs(target, asmPath, objPath string) []string {
	return []string{"nasm", "-f", ObjectFormat(target), asmPath, "-o", objPath}
}

// linkArgs returns linker invocations to try in order. The first one that
// succeeds wins; gcc fallbacks cover systems where plain ld needs runtime
// flags we do not want to guess. Extra flags append to every candidate.
func linkArgs(target, objPath, outputPath string, extra ...string) [][]string {
	var cands [][]string
	switch target {
	case "windows":
		cands = [][]string{
			{"x86_64-w64-mingw32-gcc", "-nostdlib", objPath, "-o", outputPath, "-lkernel32", "-Wl,-e,_start"},
			{"gcc", "-nostdlib", objPath, "-o", outputPath, "-lkernel32", "-Wl,-e,_start"},
		}
	case "macos":
		cands = [][]string{
			{"ld", objPath, "-o", outputPath, "-lSystem", "-e", "_start"},
			{"gcc", "-nostartfiles", objPath, "-o", outputPath},
		}
	default:
		cands = [][]string{
			{"ld", objPath, "-o", outputPath},
			{"gcc", "-static", "-nostartfiles", objPath, "-o", outputPath},
		}
	}
	for i := range cands {
		cands[i] = append(cands[i], extra...)
	}
	return cands
}

// Executable assembles NASM source and links it into a binary at outputPath.
// Additional arguments pass through to the linker.
func Executable(assembly, target, outputPath string, linkFlags ...string) error {
	tmpDir, err := os.MkdirTemp("", "hasm-build-")
	if err != nil {
		return fmt.Errorf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	asmPath := filepath.Join(tmpDir, "program.asm")
	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		return fmt.Errorf("failed to write assembly: %v", err)
	}

	objPath := filepath.Join(tmpDir, "program.o")
	argv := assembleArgs(target, asmPath, objPath)
	cmd := exec.Command(argv[0], argv[1:]...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("nasm failed: %v\n%s", err, output)
	}

	var lastErr error
	for _, argv := range linkArgs(target, objPath, outputPath, linkFlags...) {
		cmd := exec.Command(argv[0], argv[1:]...)
		output, err := cmd.CombinedOutput()
		if err == nil {
			return nil
		}
		lastErr = fmt.Errorf("%s failed: %v\n%s", argv[0], err, output)
	}
	return fmt.Errorf("linker failed: %v", lastErr)
}

// Run executes the produced binary with inherited stdio and returns its
// exit code.
func Run(path string, args ...string) (int, error) {
	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}
