package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/smallbiznis/payhook/internal/payment/webhook"
	"github.com/spf13/cobra"
)

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Print the X-Razorpay-Signature for a payload",
	Long: `Reads a payload from --file or stdin and prints the hex HMAC-SHA256 keyed
by --secret (or RAZORPAY_WEBHOOK_SECRET). The bytes are signed exactly as read.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		secret, _ := cmd.Flags().GetString("secret")
		file, _ := cmd.Flags().GetString("file")

		if strings.TrimSpace(secret) == "" {
			secret = os.Getenv("RAZORPAY_WEBHOOK_SECRET")
		}
		if strings.TrimSpace(secret) == "" {
			return errors.New("a secret is required: pass --secret or set RAZORPAY_WEBHOOK_SECRET")
		}

		payload, err := readPayload(cmd.InOrStdin(), file)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), webhook.Sign(strings.TrimSpace(secret), payload))
		return nil
	},
}

func init() {
	signCmd.Flags().String("secret", "", "webhook secret")
	signCmd.Flags().StringP("file", "f", "", "payload file (default stdin)")
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "" || file == "-" {
		return io.ReadAll(stdin)
	}
	payload, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}
