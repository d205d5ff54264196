package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/engines"
	"github.com/lenslate/lenslate/internal/ocr"
	"github.com/lenslate/lenslate/internal/ocrlines"
	"github.com/lenslate/lenslate/internal/orchestrator"
)

var ocrTranslate bool

var ocrCmd = &cobra.Command{
	Use:   "ocr <image>",
	Short: "Recognize text in an image and reconstruct readable lines",
	Long: `Run local OCR on a screenshot or image file, reassemble the raw
fragments into readable lines, and print them. With --translate the
reconstructed lines are also translated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadManager()
		if err != nil {
			return err
		}
		cfg := mgr.Get()
		source, target := resolveLangs(cfg)

		ocrLang := source
		if ocrLang == engines.LanguageAuto {
			ocrLang = cfg.Defaults.OCRLanguage
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		recognizer := ocr.NewTesseractRecognizer()
		frags, err := recognizer.Recognize(cmd.Context(), ocr.Input{Image: data, Language: ocrLang})
		if err != nil {
			return err
		}

		rec := ocrlines.NewReconstructor(source, slog.Default())
		lines := rec.Reconstruct(frags)

		if !ocrTranslate {
			for _, line := range lines {
				fmt.Println(line.Text)
			}
			return nil
		}

		orc, _, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		translated, err := orc.TranslateLines(cmd.Context(), lines, source, target)
		if err != nil {
			return err
		}
		fmt.Println(orchestrator.JoinLines(translated))
		return nil
	},
}

func init() {
	ocrCmd.Flags().StringVarP(&engineName, "engine", "e", "", "translation engine (default from config)")
	ocrCmd.Flags().StringVarP(&sourceLang, "from", "f", "", "source language code or auto")
	ocrCmd.Flags().StringVarP(&targetLang, "to", "t", "", "target language code")
	ocrCmd.Flags().BoolVar(&ocrTranslate, "translate", false, "translate the reconstructed lines")
}
