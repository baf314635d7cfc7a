package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/envelope/internal/cli"
	"github.com/Veraticus/envelope/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}

	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Open your browser to authenticate with Google
2. Save the token next to your config
3. Write the refresh token into your config file

Run it once before 'envelope export sheets'. A service account configured
through sheets.service_account_path needs no authentication.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().String("callback-addr", sheets.DefaultCallbackAddr, "Address for the local OAuth2 callback server")
	cmd.Flags().Bool("force", false, "Ignore a saved token and sign in again")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")
	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}
	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret")
	}

	configDir, err := configDir()
	if err != nil {
		return err
	}
	callbackAddr, _ := cmd.Flags().GetString("callback-addr")
	config := sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    filepath.Join(configDir, "sheets-token.json"),
		CallbackAddr: callbackAddr,
		OpenURL: func(url string) {
			fmt.Fprintln(out, cli.FormatInfo("Opening your browser to sign in with Google..."))
			fmt.Fprintf(out, "  If it does not open, visit:\n  %s\n", url)
			openBrowser(url)
		},
	}

	slog.Info("Starting Google Sheets authentication", "token_file", config.TokenFile)

	force, _ := cmd.Flags().GetBool("force")
	getToken := sheets.GetOrCreateToken
	if force {
		getToken = sheets.AuthenticateOAuth2Interactive
	}
	token, err := getToken(ctx, config)
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	if token.RefreshToken == "" {
		fmt.Fprintln(out, cli.FormatWarning("Google did not return a refresh token; rerun with --force to sign in again"))
		return nil
	}

	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(configDir); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token to your config file"))
		fmt.Fprintf(out, "Add this to config.yaml manually:\n\nsheets:\n  refresh_token: %q\n", token.RefreshToken)
		return nil
	}

	fmt.Fprintln(out, cli.FormatSuccess("Authentication successful"))
	fmt.Fprintln(out, cli.FormatInfo("Run 'envelope export sheets' to export your budget history."))
	return nil
}

func configDir() (string, error) {
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Dir(used), nil
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "envelope"), nil
}

func saveConfig(dir string) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0750); err != nil {
		return err
	}
	return viper.WriteConfigAs(configFile)
}

// openBrowser tries to open the URL in the default browser.
func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start() //nolint:gosec
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start() //nolint:gosec
	case "darwin":
		err = exec.Command("open", url).Start() //nolint:gosec
	}
	if err != nil {
		slog.Debug("Failed to open browser", "error", err)
	}
}
