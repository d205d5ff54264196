package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lenslate/lenslate/internal/engines"
)

var translateCmd = &cobra.Command{
	Use:   "translate [text]",
	Short: "Translate text from the command line or stdin",
	Long: `Translate free text. Reads from arguments, or from stdin when no
arguments are given. Paragraph breaks are preserved.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			text = strings.TrimRight(string(data), "\n")
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("no text to translate")
		}

		mgr, err := loadManager()
		if err != nil {
			return err
		}
		cfg := mgr.Get()

		orc, _, err := buildOrchestrator(cfg)
		if err != nil {
			return err
		}
		source, target := resolveLangs(cfg)

		res, err := orc.TranslateText(cmd.Context(), text, source, target)
		if err != nil {
			return err
		}

		if source == engines.LanguageAuto && res.DetectedSource != "" {
			fmt.Fprintf(os.Stderr, "detected source: %s\n", res.DetectedSource)
		}
		fmt.Println(res.Text)
		return nil
	},
}

func init() {
	translateCmd.Flags().StringVarP(&engineName, "engine", "e", "", "translation engine (default from config)")
	translateCmd.Flags().StringVarP(&sourceLang, "from", "f", "", "source language code or auto")
	translateCmd.Flags().StringVarP(&targetLang, "to", "t", "", "target language code")
}
