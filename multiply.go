package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"

	"mixcheck/log"
)

const (
	// lines kept around the repeated proof body
	headerLines = 3
	footerLines = 2

	recordSeparator = "  }, {\n"
)

var (
	ErrTooFewLines  = errors.New("proof file has too few lines")
	ErrInvalidTimes = errors.New("repetition count must be positive")
)

// Multiply copies in to out with the proof body, everything but the first
// three and last two lines, repeated times. Copies are joined by a record
// separator line so an indented proof document stays valid JSON.
func Multiply(in io.Reader, out io.Writer, times int, progress io.Writer) error {
	if times < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidTimes, times)
	}
	lines, err := readLines(in)
	if err != nil {
		return err
	}
	if len(lines) < headerLines+footerLines {
		return fmt.Errorf("%w: got %d, need at least %d", ErrTooFewLines, len(lines), headerLines+footerLines)
	}
	body := lines[headerLines : len(lines)-footerLines]

	bar := progressbar.NewOptions(times,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("multiplying proofs"),
		progressbar.OptionShowCount(),
	)

	w := bufio.NewWriter(out)
	for _, l := range lines[:headerLines] {
		if _, err := w.WriteString(l); err != nil {
			return err
		}
	}
	for j := 0; j < times; j++ {
		for _, l := range body {
			if _, err := w.WriteString(l); err != nil {
				return err
			}
		}
		if j < times-1 {
			if _, err := w.WriteString(recordSeparator); err != nil {
				return err
			}
		}
		bar.Add(1)
	}
	for _, l := range lines[len(lines)-footerLines:] {
		if _, err := w.WriteString(l); err != nil {
			return err
		}
	}
	bar.Finish()
	fmt.Fprintln(progress)
	return w.Flush()
}

// readLines splits r into lines, keeping the terminators.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	br := bufio.NewReader(r)
	for {
		l, err := br.ReadString('\n')
		if l != "" {
			lines = append(lines, l)
		}
		if err == io.EOF {
			return lines, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// multiplyFile runs Multiply from input into output. The output is written
// to a temporary file next to it and renamed when complete.
func multiplyFile(input, output string, times int, progress io.Writer) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(output), ".mixcheck-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := Multiply(in, tmp, times, progress); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return err
	}
	log.Infow("proof file multiplied", "input", input, "output", output, "times", times)
	return nil
}
