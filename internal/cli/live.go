package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"clinical-scribe/internal/awsclient"
	"clinical-scribe/internal/config"
	"clinical-scribe/internal/service/livestt"
	liveaws "clinical-scribe/internal/service/livestt/aws"
	livegoogle "clinical-scribe/internal/service/livestt/google"
	livemock "clinical-scribe/internal/service/livestt/mock"
)

// consoleCallback prints partials in place and finals on their own lines,
// collecting the finals into the session transcript.
type consoleCallback struct {
	finals []string
}

func (c *consoleCallback) OnPartial(text string) {
	fmt.Printf("\r[partial] %s", text)
}

func (c *consoleCallback) OnFinal(text string, confidence float64) {
	fmt.Printf("\r[final]   %s\n", text)
	c.finals = append(c.finals, text)
}

func (c *consoleCallback) OnError(err error) {
	log.Error().Err(err).Msg("live transcription error")
}

func newLiveCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "live",
		Short: "Stream PCM16 audio from stdin to live transcription",
		Long:  "Read raw PCM16 audio from stdin (for example piped from a recorder), stream it to the configured provider and print partial and final transcripts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if provider == "" {
				provider = cfg.Live.Provider
			}

			adapter, err := buildLiveAdapter(cmd.Context(), cfg, provider)
			if err != nil {
				return err
			}

			cb := &consoleCallback{}
			if err := adapter.Start(cmd.Context(), cb); err != nil {
				return err
			}
			log.Info().Str("provider", provider).Msg("live transcription session started")

			if err := pump(cmd.Context(), adapter); err != nil {
				adapter.Close()
				return err
			}
			if err := adapter.Close(); err != nil {
				return err
			}
			// Give the provider a moment to deliver trailing finals.
			time.Sleep(500 * time.Millisecond)

			fmt.Printf("\nFinal transcript:\n%s\n", strings.Join(cb.finals, " "))
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "streaming provider (aws, google, mock)")
	return cmd
}

// pump forwards stdin audio to the adapter in 100ms PCM16 chunks until EOF
// or cancellation.
func pump(ctx context.Context, adapter livestt.Adapter) error {
	cfg := config.Load()
	chunk := make([]byte, cfg.Live.SampleRate/10*2)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		n, err := os.Stdin.Read(chunk)
		if n > 0 {
			if sendErr := adapter.SendAudio(ctx, chunk[:n]); sendErr != nil {
				return sendErr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func buildLiveAdapter(ctx context.Context, cfg *config.Config, provider string) (livestt.Adapter, error) {
	switch provider {
	case "aws":
		clients, err := awsclient.New(cfg.Region)
		if err != nil {
			return nil, err
		}
		return liveaws.New(clients, liveaws.Config{
			LanguageCode: cfg.Live.LanguageCode,
			SampleRate:   cfg.Live.SampleRate,
		}), nil
	case "google":
		return livegoogle.New(ctx, livegoogle.Config{
			LanguageCode: cfg.Live.LanguageCode,
			SampleRate:   int32(cfg.Live.SampleRate),
		})
	case "mock":
		return livemock.New(), nil
	default:
		return nil, fmt.Errorf("unknown live provider %q", provider)
	}
}
