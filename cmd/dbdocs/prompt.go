package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/514-labs/dbdocs"
)

var _ dbdocs.LicensePrompter = (*TerminalPrompter)(nil)

// TerminalPrompter asks for license acceptance on a terminal.
type TerminalPrompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
}

// AcceptLicense prints the license and reads a yes/no answer. Without an
// interactive terminal it refuses, pointing at --accept-license.
func (p *TerminalPrompter) AcceptLicense(ctx context.Context, pack *dbdocs.DocPack) (bool, error) {
	if !p.Interactive {
		return false, dbdocs.Errorf(dbdocs.ELICENSE,
			"%s documentation is licensed under %s (%s); rerun with --accept-license to accept it",
			pack, pack.LicenseName, pack.LicenseURL)
	}

	fmt.Fprintf(p.Out, "%s documentation is licensed under %s.\n", pack, pack.LicenseName)
	if pack.LicenseURL != "" {
		fmt.Fprintf(p.Out, "  %s\n", pack.LicenseURL)
	}
	fmt.Fprint(p.Out, "Accept the license? [y/N] ")

	answer := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(p.In).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			line = ""
		}
		answer <- line
	}()

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case line := <-answer:
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	}
}
