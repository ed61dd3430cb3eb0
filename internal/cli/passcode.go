package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/fatali-fataliyev/mood_ledger/internal/auth"
)

func newPasscodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passcode",
		Short: "Hash a passcode for APP_PASSCODE_HASH",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()

			fmt.Fprint(out, "Passcode: ")
			passcode, err := readPasscode(cmd.InOrStdin(), in)
			if err != nil {
				return fmt.Errorf("failed to read passcode: %w", err)
			}
			fmt.Fprint(out, "\nRepeat passcode: ")
			repeated, err := readPasscode(cmd.InOrStdin(), in)
			if err != nil {
				return fmt.Errorf("failed to read passcode: %w", err)
			}
			fmt.Fprintln(out)
			if passcode != repeated {
				return fmt.Errorf("passcodes do not match")
			}

			hash, err := auth.HashPasscode(passcode)
			if err != nil {
				return err
			}
			// single quotes keep gotenv from expanding the $ signs
			fmt.Fprintf(out, "APP_PASSCODE_HASH='%s'\n", hash)
			return nil
		},
	}
}

func readPasscode(stdin io.Reader, buffered *bufio.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePasscode, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePasscode), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	line, err := buffered.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
