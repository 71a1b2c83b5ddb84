package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/tebeka/atexit"
	"github.com/xyproto/env/v2"

	"hasm/internal/build"
	"hasm/internal/emit"
	"hasm/internal/lower"
	"hasm/internal/scan"
	"hasm/internal/stdlib"
)

const versionString = "hasm 1.0.0"

func main() {
	var (
		outputPath  = flag.String("o", "", "output path (default: input name with a new extension)")
		target      = flag.String("target", env.Str("HASM_TARGET", "linux"), "target platform: linux, windows or macos")
		doBuild     = flag.Bool("build", false, "assemble and link with nasm")
		doRun       = flag.Bool("run", false, "build, then run the program")
		doFormat    = flag.Bool("fmt", false, "align the generated assembly with asmfmt")
		ldflags     = flag.String("ldflags", "", "extra flags passed to the linker")
		verbose     = flag.Bool("v", env.Bool("HASM_VERBOSE"), "verbose output")
		showVersion = flag.Bool("version", false, "print the version and exit")
	)
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(versionString)
		atexit.Exit(0)
	}
	if flag.NArg() != 1 {
		usage()
		atexit.Exit(1)
	}
	inputPath := flag.Arg(0)

	switch *target {
	case "linux", "windows", "macos":
	default:
		fail(fmt.Errorf("unknown target %q", *target))
	}

	source, err := os.ReadFile(inputPath)
	if err != nil {
		fail(err)
	}

	res, err := lower.New(*target).Lower(scan.Scan(string(source)))
	if err != nil {
		fail(fmt.Errorf("%s: %w", inputPath, err))
	}
	inj, err := stdlib.ForTarget(*target).Inject(res.UsedLib)
	if err != nil {
		fail(fmt.Errorf("%s: %w", inputPath, err))
	}

	assembly := emit.Render(res, inj)
	if *doFormat {
		assembly = emit.Format(assembly)
	}
	if *verbose {
		log.Printf("lowered %s for %s: %d library routines, %d interned strings",
			inputPath, *target, len(res.UsedLib), len(res.Interned))
	}

	if *doRun {
		*doBuild = true
	}
	if *doBuild {
		binPath := *outputPath
		if binPath == "" {
			binPath = replaceExt(inputPath, "")
		}
		if err := build.Executable(assembly, *target, binPath, strings.Fields(*ldflags)...); err != nil {
			fail(err)
		}
		if *verbose {
			log.Printf("built %s", binPath)
		}
		if *doRun {
			code, err := build.Run(binPath)
			if err != nil {
				fail(err)
			}
			atexit.Exit(code)
		}
		atexit.Exit(0)
	}

	asmPath := *outputPath
	if asmPath == "" {
		asmPath = replaceExt(inputPath, ".asm")
	}
	if err := os.WriteFile(asmPath, []byte(assembly), 0o644); err != nil {
		fail(err)
	}
	if *verbose {
		log.Printf("wrote %s", asmPath)
	}
	atexit.Exit(0)
}

// replaceExt swaps the input extension for newExt; an empty newExt strips
// it, falling back to a ".out" suffix when that would collide with the
// input itself.
func replaceExt(path, newExt string) string {
	base := path
	if i := strings.LastIndexByte(base, '.'); i > strings.LastIndexByte(base, '/') {
		base = base[:i]
	}
	if base == path && newExt == "" {
		return path + ".out"
	}
	return base + newExt
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	atexit.Exit(1)
}

func usage() {
	fmt.Fprintf(os.Stderr, `%s - a lowering compiler for hybrid assembly

usage: hasm [options] input.hasm

High-level control flow (if/for/while/func/call) is translated to NASM
x86-64 assembly; everything else passes through untouched.

options:
`, versionString)
	flag.PrintDefaults()
}
