package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"
	flag "github.com/spf13/pflag"

	"mixcheck/log"
)

// Version is set at build time with -ldflags
var Version string

const (
	cmdCompare  = "compare"
	cmdMultiply = "multiply"
	cmdVersion  = "version"
)

const banner = `
           _          _               _
 _ __ ___ (_)_  _____| |__   ___  ___| | __
| '_ ` + "`" + ` _ \| \ \/ / __| '_ \ / _ \/ __| |/ /
| | | | | | |>  < (__| | | |  __/ (__|   <
|_| |_| |_|_/_/\_\___|_| |_|\___|\___|_|\_\
`

/**
 Tools
**/

// fatal reports err and terminates. No verdict has been printed.
func fatal(err error) {
	log.Errorw(err, "mixcheck failed")
	fmt.Fprintln(os.Stderr)
	color.Fprintf(os.Stderr, "<error>ERROR</>\t%s\n", err)
	os.Exit(1)
}

// splitCommand returns the subcommand and its arguments. Without one the
// command is compare.
func splitCommand(args []string) (string, []string) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return cmdCompare, args
	}
	return args[0], args[1:]
}

// compareFiles loads both documents named by cfg and prints the verdict on
// stdout. Details go to stderr when cfg.Verbose is set.
func compareFiles(cfg *Config, stdout, stderr io.Writer) (bool, error) {
	if cfg.Verbose {
		color.Fprintf(stderr, "<info>%s</>\n", banner)
		fmt.Fprintln(stderr, "Compare decryption proof and mixer output ciphertexts")
		fmt.Fprintf(stderr, "%s\n\n", Version)
	}

	pf, err := ReadProofFile(cfg.ProofFile)
	if err != nil {
		return false, err
	}
	mf, err := ReadMixedFile(cfg.MixedFile)
	if err != nil {
		return false, err
	}

	proofs := pf.Ciphertexts()
	mixed, err := mf.Ciphertexts(cfg.Group, cfg.Question)
	if err != nil {
		return false, err
	}

	match := Compare(proofs, mixed)
	log.Infow("ciphertext sets compared", "proofs", len(proofs), "mixed", len(mixed), "match", match)

	if cfg.Verbose {
		PrintDifference(stderr, len(proofs), len(mixed), Diff(proofs, mixed))
		fmt.Fprintln(stderr)
	}
	fmt.Fprintln(stdout, verdict(match))
	return match, nil
}

func runCompare(args []string) error {
	cfg, err := LoadConfig(cmdCompare, args)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return err
	}
	log.Debugw("configuration loaded", "config", cfg.String())
	if err := cfg.validateCompare(); err != nil {
		return err
	}
	_, err = compareFiles(cfg, os.Stdout, os.Stderr)
	return err
}

func runMultiply(args []string) error {
	cfg, err := LoadConfig(cmdMultiply, args)
	if err != nil {
		return err
	}
	if err := log.Init(cfg.Log.Level, cfg.Log.Output); err != nil {
		return err
	}
	log.Debugw("configuration loaded", "config", cfg.String())
	if err := cfg.validateMultiply(); err != nil {
		return err
	}
	if err := multiplyFile(cfg.Multiply.Input, cfg.Multiply.Output, cfg.Multiply.Times, os.Stderr); err != nil {
		return err
	}
	color.Printf("Written %s : <suc>OK</>\n", cfg.Multiply.Output)
	return nil
}

/**
 main cli
**/

func main() {
	command, args := splitCommand(os.Args[1:])

	var err error
	switch command {
	case cmdCompare:
		err = runCompare(args)
	case cmdMultiply:
		err = runMultiply(args)
	case cmdVersion:
		fmt.Println(Version)
		return
	default:
		err = fmt.Errorf("unknown command %q (%s, %s or %s)", command, cmdCompare, cmdMultiply, cmdVersion)
	}
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fatal(err)
	}
}
