package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/models"
)

var (
	newName     string
	newSeed     string
	newSeedFile string
	newOath     bool
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a workspace",
	Long: `Create a workspace from a seed idea.

Creating a workspace is a declaration that you are the original creator of
the concept. Pass --oath to sign it.

Examples:
  proofa new --name "Tour poster" --seed "a lighthouse made of sound" --oath
  proofa new --name "Album notes" --seed-file notes.md --oath`,
	RunE: runNew,
}

func init() {
	rootCmd.AddCommand(newCmd)
	newCmd.Flags().StringVar(&newName, "name", "", "Workspace name (required)")
	newCmd.Flags().StringVar(&newSeed, "seed", "", "Seed content")
	newCmd.Flags().StringVar(&newSeedFile, "seed-file", "", "Read seed content from a file")
	newCmd.Flags().BoolVar(&newOath, "oath", false, "Sign the originality oath")
}

func runNew(cmd *cobra.Command, args []string) error {
	req, err := buildCreateRequest()
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.RequestTimeout)
	defer cancel()

	session, err := a.api.CreateWorkspace(ctx, req)
	if err != nil {
		return err
	}
	if err := a.db.UpsertWorkspaces([]models.Session{session}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to cache workspace: %v\n", err)
	}

	fmt.Printf("Created workspace %s (%s)\n", session.Name, session.ID)
	if session.OriginHash != "" {
		fmt.Printf("Origin hash: %s\n", session.OriginHash)
	}
	fmt.Printf("Open it with: proofa open %s\n", session.ID)
	return nil
}

func buildCreateRequest() (api.CreateRequest, error) {
	name := strings.TrimSpace(newName)
	if name == "" {
		return api.CreateRequest{}, errors.New("--name is required")
	}
	if !newOath {
		return api.CreateRequest{}, errors.New("you must sign the originality oath (--oath) to create a workspace")
	}

	seed := newSeed
	if newSeedFile != "" {
		data, err := os.ReadFile(newSeedFile)
		if err != nil {
			return api.CreateRequest{}, fmt.Errorf("failed to read seed file: %w", err)
		}
		seed = string(data)
	}

	return api.CreateRequest{
		Name:        name,
		SeedContent: strings.TrimSpace(seed),
		OathSigned:  true,
	}, nil
}
