package main

import (
	"github.com/spf13/cobra"

	"github.com/shouni/image-studio-kit/pkg/domain"
)

func newCardsCmd(a *app) *cobra.Command {
	var prompt, style string
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Generate four illustrated cards for a topic",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := domain.ParseStyle(style)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			images, err := a.studio.GenerateIllustratedCards(cmd.Context(), creds, domain.IllustratedCardsRequest{Prompt: prompt, Style: s})
			if err != nil {
				return err
			}
			return a.writeImages(images)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "topic to illustrate")
	cmd.Flags().StringVar(&style, "style", string(domain.DefaultStyle), "illustration style")
	return cmd
}

func newGenerateCmd(a *app) *cobra.Command {
	var (
		prompt, negative, ratio string
		count                   int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate images from a text prompt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ar, err := domain.ParseAspectRatio(ratio)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			images, err := a.studio.GenerateTextToImage(cmd.Context(), creds, domain.TextToImageRequest{
				Prompt:         prompt,
				NegativePrompt: negative,
				NumberOfImages: count,
				AspectRatio:    ar,
			})
			if err != nil {
				return err
			}
			return a.writeImages(images)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "prompt")
	cmd.Flags().StringVar(&negative, "negative", "", "things to exclude")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of images (1-10)")
	cmd.Flags().StringVar(&ratio, "aspect-ratio", string(domain.AspectRatioSquare), "1:1, 16:9, 9:16, 4:3 or 3:4")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var (
		prompt string
		images []string
	)
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit an image with a prompt",
		RunE: func(cmd *cobra.Command, _ []string) error {
			files, err := a.loader.LoadAll(cmd.Context(), images)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			out, err := a.studio.GenerateFromImageAndPrompt(cmd.Context(), creds, domain.ImageToImageRequest{Prompt: prompt, Files: files})
			if err != nil {
				return err
			}
			return a.writeImages(out)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "edit instruction")
	cmd.Flags().StringSliceVarP(&images, "image", "i", nil, "source image (path, URL or data URL); only the first is used")
	return cmd
}

func newInspireCmd(a *app) *cobra.Command {
	var prompt, reference, strength string
	cmd := &cobra.Command{
		Use:   "inspire",
		Short: "Generate an image that borrows the style of a reference image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := domain.ParseStrength(strength)
			if err != nil {
				return err
			}
			ref, err := a.loadOptional(cmd, reference)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			out, err := a.studio.GenerateWithStyleInspiration(cmd.Context(), creds, domain.StyleInspirationRequest{
				Reference: ref,
				Prompt:    prompt,
				Strength:  st,
			})
			if err != nil {
				return err
			}
			return a.writeImages(out)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "subject to draw")
	cmd.Flags().StringVarP(&reference, "reference", "r", "", "reference image")
	cmd.Flags().StringVar(&strength, "strength", string(domain.StrengthMedium), "low, medium, high or veryHigh")
	return cmd
}

func newInpaintCmd(a *app) *cobra.Command {
	var prompt, image, mask string
	cmd := &cobra.Command{
		Use:   "inpaint",
		Short: "Repaint the masked region of an image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			img, err := a.loadOptional(cmd, image)
			if err != nil {
				return err
			}
			m, err := a.loadOptional(cmd, mask)
			if err != nil {
				return err
			}
			creds, err := a.credentials()
			if err != nil {
				return err
			}
			out, err := a.studio.GenerateInpainting(cmd.Context(), creds, domain.InpaintingRequest{Prompt: prompt, Image: img, Mask: m})
			if err != nil {
				return err
			}
			return a.writeImages(out)
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "what to paint in the masked region")
	cmd.Flags().StringVarP(&image, "image", "i", "", "source image")
	cmd.Flags().StringVarP(&mask, "mask", "m", "", "mask image (white marks the region to repaint)")
	return cmd
}

// loadOptional は空の参照を空の ImageFile として返し、入力不足の判定を Generator に任せます。
func (a *app) loadOptional(cmd *cobra.Command, ref string) (domain.ImageFile, error) {
	if ref == "" {
		return domain.ImageFile{}, nil
	}
	return a.loader.Load(cmd.Context(), ref)
}
