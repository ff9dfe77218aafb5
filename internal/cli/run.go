package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"clinical-scribe/internal/config"
	"clinical-scribe/internal/notes"
	"clinical-scribe/internal/pipeline"
	"clinical-scribe/internal/store"
)

func newRunCmd() *cobra.Command {
	var soapModel, decisionModel, patientModel string
	var useMock bool

	cmd := &cobra.Command{
		Use:   "run <recording>",
		Short: "Process a consultation recording end to end",
		Long:  "Upload a recording, run medical transcription and entity extraction, generate all artefacts and save them to the output directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			prov, err := buildProviders(cfg, useMock)
			if err != nil {
				return err
			}
			publisher := newPublisher(cfg)
			defer publisher.Close()

			p := pipeline.New(
				cfg,
				prov.transcriber,
				prov.extractor,
				notes.NewGenerator(prov.invoker, cfg),
				store.New(cfg.OutputDir),
				publisher,
			)
			result, err := p.Run(cmd.Context(), args[0], pipeline.Options{
				SOAPModel:     soapModel,
				DecisionModel: decisionModel,
				PatientModel:  patientModel,
			})
			if err != nil {
				return err
			}

			fmt.Printf("Encounter:         %s\n", result.EncounterID)
			fmt.Printf("Analysis results:  %s\n", result.AnalysisPath)
			fmt.Printf("SOAP note:         %s\n", result.SOAPPath)
			fmt.Printf("Decision support:  %s\n", result.DecisionPath)
			fmt.Printf("Patient artefacts: %s\n", result.ArtefactsPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&soapModel, "soap-model", "", "model for the SOAP note (claude, nova or a full model id)")
	cmd.Flags().StringVar(&decisionModel, "decision-model", "", "model for decision support prompts")
	cmd.Flags().StringVar(&patientModel, "patient-model", "", "model for patient artefacts")
	cmd.Flags().BoolVar(&useMock, "mock", false, "use mock providers instead of AWS")
	return cmd
}
