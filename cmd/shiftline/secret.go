package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/shiftline/internal/config"
)

var secretCmd = &cobra.Command{
	Use:   "secret",
	Short: "Manage credentials in the OS keychain",
}

var secretSetCmd = &cobra.Command{
	Use:   "set <account>",
	Short: "Store a Supabase key for store.keyring_account",
	Long:  "Reads the key from stdin and stores it in the OS keychain under the given account.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSecretSet,
}

func init() {
	rootCmd.AddCommand(secretCmd)
	secretCmd.AddCommand(secretSetCmd)
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	fmt.Fprint(cmd.ErrOrStderr(), "key: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read key: %w", err)
	}
	if err := config.SetSupabaseKey(args[0], strings.TrimSpace(line)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "stored key for %s/%s\n", config.KeyringService, args[0])
	return nil
}
