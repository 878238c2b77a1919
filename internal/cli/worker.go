package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/b0risfosso/lang/internal/worker"
)

func init() {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a queue worker that pipes tasks through a command",
		Long: `Polls the task queue and processes tasks one at a time. Each claimed
task is serialized as JSON on the command's stdin; the command prints a
JSON result ({"text": ..., "model": ..., "modifier": ...}) on stdout.
Stops cleanly on SIGINT/SIGTERM.`,
		Run: runWorker,
	}
	workerCmd.Flags().StringP("cmd", "c", "", "Command to run per task (required)")
	workerCmd.Flags().DurationP("interval", "i", time.Second, "Poll interval when the queue is empty")
	workerCmd.Flags().Bool("once", false, "Process at most one task and exit")
	workerCmd.MarkFlagRequired("cmd")

	RootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) {
	cmdline, _ := cmd.Flags().GetString("cmd")
	interval, _ := cmd.Flags().GetDuration("interval")
	once, _ := cmd.Flags().GetBool("once")

	parts := strings.Fields(cmdline)
	if len(parts) == 0 {
		exitErr("worker", fmt.Errorf("empty command"))
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	log, err := zap.NewProduction()
	if err != nil {
		exitErr("init logger", err)
	}
	defer log.Sync()

	runner := &worker.CommandRunner{Name: parts[0], Args: parts[1:]}
	w := worker.New(s, runner, log, interval)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if once {
		processed, err := w.ProcessOne(ctx)
		if err != nil {
			exitErr("process task", err)
		}
		if !processed {
			fmt.Println("queue is empty")
		}
		return
	}

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		exitErr("worker", err)
	}
}
