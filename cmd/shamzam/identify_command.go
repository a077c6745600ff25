package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/shamzam/internal/audiofile"
	"github.com/cesargomez89/shamzam/internal/constants"
	"github.com/cesargomez89/shamzam/internal/domain"
	"github.com/cesargomez89/shamzam/internal/http/dto"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	var probeOnly bool

	cmd := &cobra.Command{
		Use:   "identify <file>",
		Short: "Identify an audio file and record it in the catalog",
		Long: `Identify runs the same workflow as POST /identify without going through the
gateway. The file may be any path; the recognized track is stored through the
catalog configured by CATALOG_URL.

Examples:
  shamzam identify "good 4 u.wav"
  shamzam identify --probe clips/sample.flac   # only print embedded tags`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve %s: %w", args[0], err)
			}
			library := audiofile.NewLibrary(filepath.Dir(path), cfg.MaxSampleBytes)
			name := filepath.Base(path)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if probeOnly {
				sample, err := library.Open(name)
				if err != nil {
					return cliError(err)
				}
				return enc.Encode(audiofile.Probe(sample))
			}

			if err := cfg.ValidateGateway(); err != nil {
				return err
			}
			log := ctx.logger(cfg, cmd.ErrOrStderr())
			identifier, err := newIdentifier(cfg, library, log, nil)
			if err != nil {
				return err
			}

			outcome, err := identifier.Identify(cmd.Context(), name)
			if err != nil {
				return cliError(err)
			}

			switch outcome.Status {
			case domain.OutcomeStored:
				return enc.Encode(dto.NewIdentifyResponse(outcome, constants.MsgTrackAdded, ""))
			case domain.OutcomeAlreadyCataloged:
				return enc.Encode(dto.NewIdentifyResponse(outcome, constants.MsgTrackAlreadyExists, ""))
			default:
				return enc.Encode(dto.NewIdentifyResponse(outcome, "", constants.WarnTrackNotAdded))
			}
		},
	}

	cmd.Flags().BoolVar(&probeOnly, "probe", false, "Only inspect the file, do not call the recognition provider")
	return cmd
}

// cliError turns a domain error into the message the gateway would return.
func cliError(err error) error {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return fmt.Errorf("%s: %w", constants.ErrMsgFileNotFound, err)
	case domain.KindMalformedRequest:
		if reason := domain.ReasonOf(err); reason != "" {
			return fmt.Errorf("%s: %w", reason, err)
		}
	case domain.KindUpstreamFailure:
		if reason := domain.ReasonOf(err); reason != "" {
			return fmt.Errorf(constants.ErrMsgRequestFailedFmt+": %w", reason, err)
		}
		return fmt.Errorf("%s: %w", constants.ErrMsgIdentifyFailed, err)
	}
	return err
}
