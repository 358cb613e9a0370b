// Command ext2cat is a small CLI front-end over the ext2 package: ls,
// cat, stat, and info subcommands against a raw ext2 image or device.
// The CLI is an external collaborator to the core (§1, §6) — it owns
// argument parsing and exit-code plumbing; the core stays synchronous
// and context-free.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

func main() {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	cmdr := subcommands.NewCommander(flag.CommandLine, "ext2cat")
	cmdr.Register(cmdr.HelpCommand(), "")
	cmdr.Register(cmdr.FlagsCommand(), "")
	cmdr.Register(&lsCommand{log: log}, "")
	cmdr.Register(&catCommand{log: log}, "")
	cmdr.Register(&statCommand{log: log}, "")
	cmdr.Register(&infoCommand{log: log}, "")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(cmdr.Execute(ctx)))
}
