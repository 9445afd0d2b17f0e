package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/soilsmart/soilsmart/internal/advisor"
	"github.com/soilsmart/soilsmart/internal/config"
	"github.com/soilsmart/soilsmart/internal/document"
	"github.com/soilsmart/soilsmart/internal/domain"
	"github.com/soilsmart/soilsmart/internal/fallback"
	"github.com/soilsmart/soilsmart/internal/irrigation"
	"github.com/soilsmart/soilsmart/internal/llm"
	"github.com/soilsmart/soilsmart/internal/market"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "soilctl",
		Short:         "Soil report analysis and farm planning",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(), newCropsCmd(), newIrrigationCmd(), newHarvestCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	var (
		text       string
		location   string
		budget     string
		preference string
		useLLM     bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Parse a soil report and print recommendations as JSON",
		Long: "Parse a soil report (PDF, image, HTML or text file, or --text) and print the\n" +
			"soil sample and recommendations. The offline engine is used unless --llm is set.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			uctx := domain.UserContext{Location: location, CropPreference: preference}
			if err := uctx.Budget.UnmarshalText([]byte(budget)); err != nil {
				return fmt.Errorf("--budget: %w", err)
			}

			cfg, err := config.FromEnv()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var (
				model       llm.LLM
				transcriber document.Transcriber
			)
			if useLLM {
				prompts, err := llm.LoadPrompts(cfg.LLM.PromptsPath)
				if err != nil {
					return fmt.Errorf("load prompts: %w", err)
				}
				client, err := llm.New(ctx, cfg, prompts)
				if err != nil {
					return fmt.Errorf("init llm client: %w", err)
				}
				defer client.Close()
				model, transcriber = client, client
			}

			switch {
			case len(args) == 1:
				data, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				text, err = document.NewExtractor(transcriber).Extract(ctx, data, args[0], "")
				if err != nil {
					return err
				}
			case text == "":
				return errors.New("a report file or --text is required")
			default:
				if err := domain.ValidateReportText(text); err != nil {
					return err
				}
			}

			a := advisor.New(model, cfg.Engine.DefaultBudget).Analyze(ctx, text, uctx)
			return writeJSON(cmd.OutOrStdout(), domain.AnalyzeResponse{
				Success:         true,
				SoilData:        a.Sample,
				Recommendations: a.Bundle,
				ExtractedText:   domain.Preview(text),
				Sources: domain.AnalyzeSources{
					SoilData:        a.SampleSource,
					Recommendations: a.BundleSource,
				},
			})
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "report text instead of a file")
	cmd.Flags().StringVar(&location, "location", "", "farm location, e.g. Punjab")
	cmd.Flags().StringVar(&budget, "budget", "", "budget in INR (default 50000)")
	cmd.Flags().StringVar(&preference, "preference", "", "crop preference: grains, vegetables, cash, fruits")
	cmd.Flags().BoolVar(&useLLM, "llm", false, "use the configured LLM provider")
	return cmd
}

func newCropsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "crops",
		Short: "Print the crop catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeJSON(cmd.OutOrStdout(), fallback.Catalog())
		},
	}
}

func newIrrigationCmd() *cobra.Command {
	var req domain.IrrigationPlanRequest
	cmd := &cobra.Command{
		Use:   "irrigation",
		Short: "Plan seasonal irrigation water and cost",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := req.Validate(); err != nil {
				return err
			}
			rep, err := irrigation.Build(req.Method, req.Crop, req.Soil, req.Season, req.Area)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().StringVar(&req.Method, "method", "", "drip, sprinkler, flood, furrow or subsurface (default: recommended)")
	cmd.Flags().StringVar(&req.Crop, "crop", "Wheat", "crop name")
	cmd.Flags().StringVar(&req.Soil, "soil", "Loam", "soil texture")
	cmd.Flags().StringVar(&req.Season, "season", irrigation.SeasonKharif, "Kharif, Rabi or Zaid")
	cmd.Flags().Float64Var(&req.Area, "area", 1, "area in hectares")
	return cmd
}

func newHarvestCmd() *cobra.Command {
	var req domain.HarvestPlanRequest
	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Advise when to sell a harvest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.ExpectedHarvestDate == "" {
				req.ExpectedHarvestDate = time.Now().Format(time.DateOnly)
			}
			if err := req.Validate(); err != nil {
				return err
			}
			month, err := market.HarvestMonth(req.ExpectedHarvestDate)
			if err != nil {
				return fmt.Errorf("--date: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), market.Advise(req.Crop, month, req.Location))
		},
	}
	cmd.Flags().StringVar(&req.Crop, "crop", market.DefaultCrop, "crop name")
	cmd.Flags().StringVar(&req.ExpectedHarvestDate, "date", "", "expected harvest date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&req.Location, "location", "", "farm location")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
