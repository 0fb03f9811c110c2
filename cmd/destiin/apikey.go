package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("reading random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func newAPIKeyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api-key",
		Short: "Manage the API keys accepted by authenticated methods",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Generate and store a new key:secret pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := randomHex(8)
			if err != nil {
				return err
			}
			secret, err := randomHex(16)
			if err != nil {
				return err
			}
			pair := key + ":" + secret
			if err := c.config.AddAPIKey(pair); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Authorization: token %s\n", pair)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add key:secret",
		Short: "Store an existing key:secret pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.config.AddAPIKey(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove key",
		Short: "Remove every pair using key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.config.RemoveAPIKey(args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the configured keys without their secrets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, key := range slices.Sorted(maps.Keys(c.config.APIKeyPairs())) {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	})
	return cmd
}
