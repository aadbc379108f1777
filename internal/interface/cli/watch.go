package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neilberkman/proofa/internal/core/push"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

var watchCmd = &cobra.Command{
	Use:   "watch <workspace-id>",
	Short: "Stream live analysis updates",
	Long: `Connect to the live channel of a workspace and print every analysis
update as it arrives. Reconnects after a dropped connection. Ctrl-C to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	fmt.Printf("Watching %s (Ctrl-C to stop)\n", id)

	return a.push.Run(cmd.Context(), id, push.Handlers{
		OnStatus: func(s push.Status) {
			fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), s)
		},
		OnEvent: func(ev judgewire.Event) {
			u, ok := push.Interpret(ev, time.Now())
			if !ok {
				a.logger.Debug("ignoring push event", zap.String("type", ev.Type))
				return
			}
			printPushUpdate(u)
		},
	})
}

func printPushUpdate(u push.Update) {
	stamp := time.Now().Format("15:04:05")
	if u.Analysis.HasScore {
		fmt.Printf("[%s] score %d/100", stamp, u.Analysis.Score)
		if u.Analysis.Verdict != "" {
			fmt.Printf("  %s", u.Analysis.Verdict)
		}
		if judgewire.Eligible(u.Analysis.Score) {
			fmt.Print("  (eligible)")
		}
		fmt.Println()
	}
	if u.Analysis.Reason != "" {
		fmt.Printf("           %s\n", truncate(u.Analysis.Reason, 100))
	}
	if u.Message != nil {
		fmt.Printf("           %s\n", truncate(u.Message.Content, 100))
	}
}
