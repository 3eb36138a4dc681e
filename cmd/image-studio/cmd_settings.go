package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/image-studio-kit/pkg/settings"
)

func newModelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List image models available to the configured key",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			models, err := a.studio.ListAvailableImageModels(cmd.Context(), creds)
			if err != nil {
				return err
			}
			for _, m := range models {
				fmt.Fprintln(a.out, m)
			}
			return nil
		},
	}
}

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the saved connection settings",
	}
	cmd.AddCommand(newSettingsShowCmd(a), newSettingsSetCmd(a), newSettingsClearCmd(a))
	return cmd
}

func newSettingsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active connection settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			stored, err := a.store.Load()
			if err != nil {
				return err
			}
			creds, cur := settings.Resolve(stored, a.cfg.Defaults())

			source := "environment"
			if cur.APIKey != nil {
				source = "saved"
			}
			fmt.Fprintf(a.out, "file:     %s\n", a.store.Path())
			fmt.Fprintf(a.out, "provider: %s\n", creds.Provider)
			fmt.Fprintf(a.out, "api key:  %s (%s)\n", maskKey(creds.APIKey), source)
			fmt.Fprintf(a.out, "base url: %s\n", creds.BaseURL)
			fmt.Fprintf(a.out, "model:    %s\n", creds.Model)
			return nil
		},
	}
}

// newSettingsSetCmd は設定ダイアログと同じ手順で入力を保存します。
func newSettingsSetCmd(a *app) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save --api-key, --base-url and --model for later runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stored, err := a.store.Load()
			if err != nil {
				return err
			}
			creds, cur := settings.Resolve(stored, a.cfg.Defaults())
			if a.opts.model != "" {
				cur.Model = a.opts.model
			}

			dialog := settings.NewDialog(a.studio.ListAvailableImageModels, a.store.Save,
				settings.WithProvider(creds.Provider),
				settings.WithDefaultModel(a.cfg.Models().Image),
				settings.WithLogger(a.logger),
			)
			dialog.Open(cur)
			if a.opts.apiKey != "" {
				dialog.SetAPIKey(a.opts.apiKey)
			}
			if a.opts.baseURL != "" {
				dialog.SetBaseURL(a.opts.baseURL)
			}

			if refresh {
				if err := dialog.RefreshModels(cmd.Context()); err != nil {
					return err
				}
				if v := dialog.Snapshot(); v.Error != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), v.Error)
				}
			}
			if err := dialog.Save(); err != nil {
				return err
			}

			v := dialog.Snapshot()
			fmt.Fprintf(a.out, "saved to %s (model: %s, candidates: %s)\n",
				a.store.Path(), v.Model, strings.Join(v.Candidates, ", "))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the model list with the new key before saving")
	return cmd
}

func newSettingsClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved connection settings",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.store.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "settings cleared")
			return nil
		},
	}
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:3] + "..." + key[len(key)-4:]
	}
}
