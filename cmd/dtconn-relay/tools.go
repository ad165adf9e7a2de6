package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/PratikDhanave/dtconn-relay/internal/auth"
	"github.com/PratikDhanave/dtconn-relay/internal/models"
)

// NewSignCommand prints a token accepted by a relay configured with the same secret.
func NewSignCommand() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "print an x-dt-signature token for the shared secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.Sign(secret, nil)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&secret, "secret", os.Getenv("SIGNATURE"), "shared signing secret (defaults to $SIGNATURE)")
	return cmd
}

// NewSendCommand posts one sample event to a running relay. Useful as a
// smoke test after deploying.
func NewSendCommand() *cobra.Command {
	var (
		url        string
		secret     string
		eventID    string
		targetName string
		eventType  string
		labels     map[string]string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "send a signed sample event to a relay",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := auth.Sign(secret, nil)
			if err != nil {
				return err
			}

			if eventID == "" {
				eventID = uuid.NewString()
			}
			if labels == nil {
				labels = map[string]string{}
			}
			payload := models.IngestRequest{
				Event: models.NewEvent(
					eventID,
					targetName,
					eventType,
					time.Now().UTC().Format(time.RFC3339),
					map[string]any{"source": "dtconn-relay send"},
				),
				Labels: labels,
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			err = requests.
				URL(url).
				UserAgent("dtconn-relay").
				Header(auth.SignatureHeader, token).
				BodyJSON(&payload).
				Fetch(ctx)
			if err != nil {
				return errors.Wrapf(err, "send event %s", eventID)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "sent event %s\n", eventID)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080/dtconn", "relay endpoint")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("SIGNATURE"), "shared signing secret (defaults to $SIGNATURE)")
	cmd.Flags().StringVar(&eventID, "event-id", "", "event id, random when empty")
	cmd.Flags().StringVar(&targetName, "target", "dtconn-relay-smoke", "target name")
	cmd.Flags().StringVar(&eventType, "type", "CUSTOM_INFO", "event type")
	cmd.Flags().StringToStringVar(&labels, "label", nil, "label key=value (repeatable)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "request timeout")
	return cmd
}
