package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/qrnotes/cmd/qrnotes/commands"
	ferrors "git.home.luguber.info/inful/qrnotes/internal/foundation/errors"
	"git.home.luguber.info/inful/qrnotes/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("qrnotes"),
		kong.Description("Turn inline Markdown links into footnotes with printable QR codes."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := parser.Run(&commands.Global{Context: ctx, Out: os.Stdout, Err: os.Stderr}, cli)
	cancel()

	ferrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
