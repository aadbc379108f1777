package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/neilberkman/proofa/internal/core/api"
	"github.com/neilberkman/proofa/internal/core/config"
	"github.com/neilberkman/proofa/internal/core/export"
	"github.com/neilberkman/proofa/internal/core/upload"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

var (
	sendFile string
	sendMode string
)

var sendCmd = &cobra.Command{
	Use:   "send <workspace-id> [prompt...]",
	Short: "Send a prompt or file to the judge",
	Long: `Send one message to a workspace and print the judge's reply with the
new score.

With --file the file is uploaded first and attached to the message. A file
can be sent without a prompt. Without a prompt argument, an unsent draft for
the workspace is used.

Examples:
  proofa send 5f2a "make the beam sweep left to right"
  proofa send 5f2a --file sketch.png
  proofa send 5f2a --mode art "palette: cold blues"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVar(&sendFile, "file", "", "File to upload and attach")
	sendCmd.Flags().StringVar(&sendMode, "mode", "", "Interaction mode ("+strings.Join(config.Modes, ", ")+")")
}

func runSend(cmd *cobra.Command, args []string) error {
	id := args[0]
	prompt := strings.TrimSpace(strings.Join(args[1:], " "))

	if sendMode != "" && !config.ValidMode(sendMode) {
		return fmt.Errorf("unknown mode %q (supported: %s)", sendMode, strings.Join(config.Modes, ", "))
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	w := a.workspace(id, false)
	defer w.Close()

	if err := openForCommand(ctx, w, a.cfg.RequestTimeout); err != nil {
		return err
	}
	if sendMode != "" {
		w.SetMode(sendMode)
	}

	if sendFile != "" {
		if err := attachWithProgress(ctx, w, sendFile); err != nil {
			return err
		}
	}

	before := w.Score()
	if prompt != "" {
		w.SetDraft(prompt)
	} else if w.Draft() != "" {
		fmt.Fprintf(os.Stderr, "Sending saved draft: %s\n", truncate(w.Draft(), 60))
	}

	spin := newSpinner(os.Stderr, "Waiting for the judge...")
	spin.Start()
	reply, err := w.Send(ctx)
	spin.Stop()
	if err != nil {
		if errors.Is(err, workspace.ErrEmptyMessage) {
			return errors.New("nothing to send: give a prompt or --file")
		}
		return err
	}

	if reply != nil {
		fmt.Println(export.Header(*reply))
		fmt.Println(export.Body(*reply))
		fmt.Println()
	}

	after := w.Score()
	fmt.Printf("Score: %d/100", after.Score)
	if after.Score != before.Score {
		fmt.Printf(" (%+d)", after.Score-before.Score)
	}
	if after.Verdict != "" {
		fmt.Printf("  %s", after.Verdict)
	}
	fmt.Println()
	if after.Eligible && !before.Eligible {
		fmt.Printf("Eligible for certification. Run 'proofa certify %s'.\n", id)
	}
	return nil
}

// openForCommand loads a workspace for a one-shot command. An expired token
// stops the command; any other load failure is only a warning since the
// backend can still accept the request.
func openForCommand(ctx context.Context, w *workspace.Workspace, timeout time.Duration) error {
	loadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := w.Open(loadCtx)
	if err == nil {
		return nil
	}
	if errors.Is(err, api.ErrUnauthorized) || errors.Is(err, workspace.ErrClosed) {
		return err
	}
	fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	return nil
}

// attachWithProgress uploads path and draws a progress bar until the file is
// staged.
func attachWithProgress(ctx context.Context, w *workspace.Workspace, path string) error {
	final, err := w.Attach(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to attach %s: %w", path, err)
	}

	st := w.Upload()
	progress := upload.NewProgressReporter(os.Stderr, st.FileName, st.Size)
	updates := w.Updates()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				updates = nil
				continue
			}
			if u.Kind == workspace.UpdateUpload && u.Upload.Phase == upload.PhaseUploading {
				progress.Update(u.Upload.Progress)
			}

		case s, ok := <-final:
			if !ok {
				return errors.New("upload was cancelled")
			}
			if s.Phase == upload.PhaseError {
				progress.Finish(s.Err)
				return fmt.Errorf("upload failed: %w", s.Err)
			}
			progress.Update(100)
			progress.Finish(nil)
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
