// Command sealstore seals files for a recipient key and stores them by the
// SHA-256 of the sealed blob.
//
//	sealstore key generate --name backup
//	sealstore put --recipient keys/backup.pub report.pdf
//	sealstore get 3f2a...e1 --out report.pdf
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/kochabx/sealstore/errors"
)

// Process exit codes
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitNotFound    = 3
	exitIntegrity   = 4
	exitUnavailable = 5
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	err := newApp().Run(args)
	if err == nil {
		return exitOK
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(os.Stderr, "sealstore: %s\n", msg)
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var exit cli.ExitCoder
	if errors.As(err, &exit) {
		return exit.ExitCode()
	}

	switch errors.CodeOf(err) {
	case errors.CodeInvalidArgument:
		return exitUsage
	case errors.CodeBlobNotFound, errors.CodeKeyNotFound:
		return exitNotFound
	case errors.CodeIntegrity, errors.CodeAuthentication, errors.CodeFormat:
		return exitIntegrity
	case errors.CodeStorage:
		return exitUnavailable
	default:
		return exitFailure
	}
}
