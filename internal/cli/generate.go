package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/models"
	"clinical-scribe/internal/notes"
	"clinical-scribe/internal/store"
)

// artefactRunner generates one artefact group from a saved analysis file and
// persists it.
type artefactRunner func(ctx context.Context, gen *notes.Generator, st *store.Store, enc *models.Encounter, model string) (string, error)

func newArtefactCmd(use, short string, run artefactRunner) *cobra.Command {
	var model string
	var useMock bool

	cmd := &cobra.Command{
		Use:   use + " <analysis-file>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			prov, err := buildProviders(cfg, useMock)
			if err != nil {
				return err
			}
			st := store.New(cfg.OutputDir)
			enc, err := st.LoadEncounter(args[0])
			if err != nil {
				return err
			}

			gen := notes.NewGenerator(prov.invoker, cfg)
			path, err := run(cmd.Context(), gen, st, enc, model)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "model to use (claude, nova or a full model id)")
	cmd.Flags().BoolVar(&useMock, "mock", false, "use a mock model instead of Bedrock")
	return cmd
}

func newSoapCmd() *cobra.Command {
	return newArtefactCmd("soap", "Generate a SOAP note from a saved analysis",
		func(ctx context.Context, gen *notes.Generator, st *store.Store, enc *models.Encounter, model string) (string, error) {
			soap, err := gen.SOAPNote(ctx, enc, model)
			if err != nil {
				return "", err
			}
			return st.SaveSOAPNote(soap, enc.EncounterID, enc.CorrelationID)
		})
}

func newDecisionCmd() *cobra.Command {
	return newArtefactCmd("decision", "Generate decision support prompts from a saved analysis",
		func(ctx context.Context, gen *notes.Generator, st *store.Store, enc *models.Encounter, model string) (string, error) {
			prompts, err := gen.DecisionSupport(ctx, enc, model)
			if err != nil {
				return "", err
			}
			return st.SaveDecisionSupport(prompts, enc.EncounterID, enc.CorrelationID)
		})
}

func newArtefactsCmd() *cobra.Command {
	return newArtefactCmd("artefacts", "Generate patient artefacts from a saved analysis",
		func(ctx context.Context, gen *notes.Generator, st *store.Store, enc *models.Encounter, model string) (string, error) {
			bundle, err := gen.PatientArtefacts(ctx, enc, model)
			if err != nil {
				return "", err
			}
			return st.SavePatientArtefacts(bundle, enc.EncounterID, enc.CorrelationID)
		})
}
