// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/bwmdecode/config"
	"github.com/katalvlaran/bwmdecode/decoding"
)

// runRecord is one line of `run` output.
type runRecord struct {
	Session string           `json:"session"`
	Subject string           `json:"subject,omitempty"`
	Region  string           `json:"region"`
	Result  *decoding.Result `json:"result"`
}

func newRunCmd(a *app) *cobra.Command {
	var (
		sessionsPath string
		only         string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Decode the recorded sessions once and print the results as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sf, err := config.LoadSessions(sessionsPath)
			if err != nil {
				return err
			}
			cfg, err := a.file.DecodingConfig()
			if err != nil {
				return err
			}

			var records []runRecord
			for _, s := range sf.Sessions {
				if only != "" && s.Session != only {
					continue
				}
				res, err := decodeSession(cfg, s, a.logger)
				if err != nil {
					return fmt.Errorf("session %s region %s: %w", s.Session, s.Region, err)
				}
				records = append(records, runRecord{Session: s.Session, Subject: s.Subject, Region: s.Region, Result: res})
			}
			if len(records) == 0 {
				return fmt.Errorf("no session matches %q: %w", only, config.ErrInvalid)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		},
	}
	cmd.Flags().StringVarP(&sessionsPath, "sessions", "s", "", "session input file (YAML or JSON)")
	cmd.Flags().StringVar(&only, "session", "", "decode only the session with this id")
	_ = cmd.MarkFlagRequired("sessions")
	return cmd
}

func decodeSession(cfg decoding.Config, s config.Session, logger *slog.Logger) (*decoding.Result, error) {
	set, err := s.TrialSet()
	if err != nil {
		return nil, err
	}
	eng, err := decoding.New(cfg, decoding.WithLogger(logger.With(
		slog.String("session", s.Session),
		slog.String("region", s.Region),
	)))
	if err != nil {
		return nil, err
	}
	return eng.Decode(set)
}
