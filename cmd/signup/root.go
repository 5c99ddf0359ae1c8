package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/AlibekovAA/credauth/internal/client"
	"github.com/AlibekovAA/credauth/internal/common/config"
	"github.com/AlibekovAA/credauth/internal/common/logger"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "signup",
		Short:        "Create an account and sign in",
		SilenceUsage: true,
		RunE:         runSignup,
	}
	config.RegisterClientFlags(cmd.Flags())
	cmd.Flags().String("log-level", "warning", "log level")
	return cmd
}

func runSignup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadClientConfig(cmd.Flags())
	if err != nil {
		return err
	}

	level, _ := cmd.Flags().GetString("log-level")
	log := logger.NewWithWriter(cmd.ErrOrStderr(), "signup", level)

	input, err := promptForm(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	flow, err := client.NewFormFlow(cfg, log, client.WithOnChange(func(s client.FormState) {
		if s.Loading {
			fmt.Fprintln(out, "Creating account...")
		}
	}))
	if err != nil {
		return err
	}
	defer flow.Close()

	state := flow.Submit(cmd.Context(), input)
	return report(out, state)
}

func report(w io.Writer, state client.FormState) error {
	if state.User != nil {
		fmt.Fprintf(w, "Account created: %s (%s)\n", state.User.Username, state.User.ID)
	}
	if state.Error != "" {
		return errors.New(state.Error)
	}
	fmt.Fprintf(w, "Signed in, opened %s (HTTP %d)\n", state.Location, state.PageStatus)
	return nil
}

func promptForm(in io.Reader, w io.Writer) (client.FormInput, error) {
	reader := bufio.NewReader(in)

	email, err := prompt(reader, w, "Email")
	if err != nil {
		return client.FormInput{}, err
	}
	username, err := prompt(reader, w, "Username")
	if err != nil {
		return client.FormInput{}, err
	}
	displayName, err := prompt(reader, w, "Display name (optional)")
	if err != nil {
		return client.FormInput{}, err
	}
	password, err := promptPassword(reader, in, w)
	if err != nil {
		return client.FormInput{}, err
	}

	return client.FormInput{
		Email:       email,
		Username:    username,
		Password:    password,
		DisplayName: displayName,
	}, nil
}

func prompt(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	line, err := readLine(reader, w, label)
	return strings.TrimSpace(line), err
}

// readLine returns the line without its terminator and keeps any other
// whitespace as typed.
func readLine(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprintf(w, "%s: ", label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptPassword reads without echo from a terminal and falls back to a
// plain line for piped input. Both paths keep surrounding spaces.
func promptPassword(reader *bufio.Reader, in io.Reader, w io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Password: ")
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}
	return readLine(reader, w, "Password")
}
