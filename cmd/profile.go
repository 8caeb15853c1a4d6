package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"billdocs/internal/logger"
	"billdocs/internal/render"
	"billdocs/internal/session"
	"billdocs/internal/validation"
	"billdocs/pkg/models"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the business details printed on every document",
	Long: `The business profile is stored separately from documents and is kept
when a new document is started. Changes are also applied to the current
session file if there is one.`,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the business profile as YAML",
	Args:  cobra.NoArgs,
	RunE:  runProfileShow,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change business details",
	Example: `  billdocs profile set --name "Xamtastic Electric" --city Lagos --email billing@xamtastic.ng

  # Load all fields from a YAML file
  billdocs profile set --file business.yaml`,
	Args: cobra.NoArgs,
	RunE: runProfileSet,
}

var profileLogoCmd = &cobra.Command{
	Use:   "logo [image-file]",
	Short: "Set the business logo from a PNG, JPEG, GIF, WebP or BMP file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfileLogo,
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileLogoCmd)

	profileSetCmd.Flags().String("file", "", "YAML file with the complete profile")
	profileSetCmd.Flags().String("name", "", "Business name")
	profileSetCmd.Flags().String("address", "", "Street address")
	profileSetCmd.Flags().String("city", "", "City")
	profileSetCmd.Flags().String("postal", "", "Postal code")
	profileSetCmd.Flags().String("phone", "", "Phone number")
	profileSetCmd.Flags().String("email", "", "Email address")
	profileSetCmd.Flags().String("website", "", "Website")
	profileSetCmd.Flags().String("tax-id", "", "Tax identification number")

	profileLogoCmd.Flags().Bool("clear", false, "Remove the logo")
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profiles.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load business profile: %w", err)
	}
	if len(profile.Logo) > 48 {
		profile.Logo = fmt.Sprintf("%s... (%d bytes)", profile.Logo[:32], len(profile.Logo))
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	fmt.Print(string(data))
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("profile")
	file, _ := cmd.Flags().GetString("file")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profiles.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load business profile: %w", err)
	}

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read profile file: %w", err)
		}
		logo := profile.Logo
		profile = models.BusinessProfile{}
		if err := yaml.Unmarshal(data, &profile); err != nil {
			return fmt.Errorf("failed to parse profile file %s: %w", file, err)
		}
		if profile.Logo == "" {
			profile.Logo = logo
		}
	}
	setStringFlags(cmd, map[string]*string{
		"name":    &profile.Name,
		"address": &profile.Address,
		"city":    &profile.City,
		"postal":  &profile.PostalCode,
		"phone":   &profile.Phone,
		"email":   &profile.Email,
		"website": &profile.Website,
		"tax-id":  &profile.TaxID,
	})

	return storeProfile(cmd, a, profile, log)
}

func runProfileLogo(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("profile")
	remove, _ := cmd.Flags().GetBool("clear")
	if remove == (len(args) == 1) {
		return fmt.Errorf("give either an image file or --clear")
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	profile, err := a.profiles.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load business profile: %w", err)
	}

	if remove {
		profile.Logo = ""
	} else {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read logo: %w", err)
		}
		logo, err := render.LogoDataURL(data)
		if err != nil {
			return handleExportError(err, log)
		}
		profile.Logo = logo
		log.Info().Str("file", args[0]).Int("bytes", len(data)).Msg("Logo loaded")
	}

	return storeProfile(cmd, a, profile, log)
}

// storeProfile validates and saves profile, then applies it to the session
// file if one exists.
func storeProfile(cmd *cobra.Command, a *app, profile models.BusinessProfile, log zerolog.Logger) error {
	if err := validation.ValidateProfile(profile); err != nil {
		return fmt.Errorf("invalid business profile: %w", err)
	}
	if err := a.profiles.Save(cmd.Context(), profile); err != nil {
		return fmt.Errorf("failed to save business profile: %w", err)
	}

	s, err := session.ReadFile(sessionPath(cmd))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Println("Business profile saved")
		return nil
	case err != nil:
		log.Warn().Err(err).Msg("Session file unreadable, profile not applied to it")
		fmt.Println("Business profile saved")
		return nil
	}

	s.SetBusinessProfile(profile)
	if err := saveSession(cmd, s); err != nil {
		return err
	}
	fmt.Printf("Business profile saved and applied to %s\n", sessionPath(cmd))
	return nil
}
