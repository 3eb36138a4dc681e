package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

func newComicCmd(a *app) *cobra.Command {
	var (
		story, style string
		panels       int
	)
	cmd := &cobra.Command{
		Use:   "comic",
		Short: "Turn a story into a comic strip",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := domain.ParseStyle(style)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			strip, err := a.studio.GenerateComicStrip(cmd.Context(), creds, domain.ComicStripRequest{
				Story:          story,
				Style:          s,
				NumberOfImages: panels,
			})
			if err != nil {
				return err
			}
			for i, p := range strip.PanelPrompts {
				a.logger.Info("panel prompt", zap.Int("panel", i+1), zap.String("prompt", p))
			}
			return a.writeImages(strip.Images)
		},
	}
	cmd.Flags().StringVarP(&story, "story", "s", "", "story text")
	cmd.Flags().StringVar(&style, "style", string(domain.DefaultStyle), "illustration style")
	cmd.Flags().IntVarP(&panels, "panels", "n", 4, "number of panels (1-10)")
	return cmd
}

func newPanelEditCmd(a *app) *cobra.Command {
	var panel, prompt string
	cmd := &cobra.Command{
		Use:   "panel-edit",
		Short: "Revise a single comic panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			src := ""
			if panel != "" {
				var err error
				if src, err = a.loadDataURL(cmd, panel); err != nil {
					return err
				}
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			img, err := a.studio.EditComicPanel(cmd.Context(), creds, domain.PanelEditRequest{
				Panel:  domain.GeneratedImage{Src: src},
				Prompt: prompt,
			})
			if err != nil {
				return err
			}
			return a.writeImages([]domain.GeneratedImage{img})
		},
	}
	cmd.Flags().StringVar(&panel, "panel", "", "panel image to revise")
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "revision instruction")
	return cmd
}

func newVideoScriptsCmd(a *app) *cobra.Command {
	var (
		story  string
		images []string
	)
	cmd := &cobra.Command{
		Use:   "video-scripts",
		Short: "Write one short video direction per comic panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			panels := make([]domain.GeneratedImage, 0, len(images))
			for _, ref := range images {
				src, err := a.loadDataURL(cmd, ref)
				if err != nil {
					return err
				}
				panels = append(panels, domain.GeneratedImage{Src: src})
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			scripts, err := a.studio.GenerateVideoScripts(cmd.Context(), creds, domain.VideoScriptRequest{Story: story, Images: panels})
			if err != nil {
				return err
			}
			for i, s := range scripts {
				fmt.Fprintf(a.out, "%d. %s\n", i+1, s)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&story, "story", "s", "", "story text")
	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "panel images in order")
	return cmd
}

func newVideoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "video",
		Short: "Generate a video from panels (not available for the current providers)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			return a.studio.GenerateVideo(cmd.Context(), creds)
		},
	}
}
