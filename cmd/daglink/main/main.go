package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/timbertson/daglink/cmd/daglink"
	"github.com/timbertson/daglink/pkg/ui"
	"github.com/timbertson/daglink/pkg/ui/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	rootCmd := daglink.NewRootCmd()
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		msg := fmt.Sprintf("Error: %v", err)
		if ui.IsTerminal(os.Stderr) {
			msg = styles.Render("Error", msg)
		}
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(1)
	}
}
