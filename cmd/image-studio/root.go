package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "image-studio",
		Short: "OpenAI / Gemini 互換 API で画像を生成・編集する CLI",
		Long: `image-studio は図解カード、テキストからの画像生成、画像編集、
画風の参照、インペインティング、連環画の生成をコマンドラインから実行します。

接続情報はフラグ、保存済み設定 (settings set)、環境変数の順に使われます。

Examples:
  image-studio cards --prompt "光合成のしくみ" --style watercolor
  image-studio generate --prompt "a cat" --negative "dog" -n 2 --aspect-ratio 16:9
  image-studio comic --story "..." --panels 4
  image-studio serve --addr :8080`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.apiKey, "api-key", "", "API key (overrides saved settings and environment)")
	flags.StringVar(&a.opts.baseURL, "base-url", "", "OpenAI compatible base URL")
	flags.StringVar(&a.opts.model, "model", "", "image model")
	flags.StringVar(&a.opts.provider, "provider", "", "provider: openai or gemini")
	flags.StringVarP(&a.opts.outDir, "out", "o", ".", "output directory for generated images")
	flags.StringVar(&a.opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(
		newCardsCmd(a),
		newGenerateCmd(a),
		newEditCmd(a),
		newInspireCmd(a),
		newInpaintCmd(a),
		newComicCmd(a),
		newPanelEditCmd(a),
		newVideoScriptsCmd(a),
		newVideoCmd(a),
		newModelsCmd(a),
		newSettingsCmd(a),
		newServeCmd(a),
	)
	return root
}
