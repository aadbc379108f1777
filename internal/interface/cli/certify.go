package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

var certifyCmd = &cobra.Command{
	Use:   "certify <workspace-id>",
	Short: "Certify a workspace",
	Long: `Certify a workspace once its authorship score has reached 80.

The score is checked locally before anything is sent.`,
	Args: cobra.ExactArgs(1),
	RunE: runCertify,
}

func init() {
	rootCmd.AddCommand(certifyCmd)
}

func runCertify(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	w := a.workspace(args[0], false)
	defer w.Close()

	if err := openForCommand(ctx, w, a.cfg.RequestTimeout); err != nil {
		return err
	}

	if w.Session().Status != models.StatusCollaborating {
		fmt.Printf("Workspace is already %s.\n", statusLabel(w.Session().Status))
		return nil
	}

	res, err := w.Certify(ctx)
	if err != nil {
		if errors.Is(err, workspace.ErrNotEligible) {
			return fmt.Errorf("%w: keep collaborating with the judge and try again", err)
		}
		return err
	}

	session := w.Session()
	if err := a.db.UpsertWorkspaces([]models.Session{session}); err != nil {
		a.logger.Warn("failed to cache certified workspace")
	}

	fmt.Printf("Workspace %s is now %s.\n", args[0], statusLabel(session.Status))
	if res.Message != "" {
		fmt.Println(res.Message)
	}
	if session.OriginHash != "" {
		fmt.Printf("Origin hash: %s\n", session.OriginHash)
	}
	return nil
}

func statusLabel(s models.Status) string {
	switch s {
	case models.StatusCertified:
		return "certified"
	case models.StatusLicensing:
		return "licensing"
	case models.StatusCollaborating:
		return "collaborating"
	}
	return "unknown"
}
