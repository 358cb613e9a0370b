package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/ext2fs/ext2fs/ext2"
)

type lsCommand struct {
	log *logrus.Logger
}

func (*lsCommand) Name() string     { return "ls" }
func (*lsCommand) Synopsis() string { return "list a directory inside an ext2 image" }
func (*lsCommand) Usage() string {
	return "ls <image> [path]:\n  list directory entries at path (default \"/\") inside image.\n"
}
func (*lsCommand) SetFlags(*flag.FlagSet) {}

func (c *lsCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		c.log.Error("ls: missing image path")
		return subcommands.ExitUsageError
	}
	imagePath := f.Arg(0)
	inPath := "/"
	if f.NArg() >= 2 {
		inPath = f.Arg(1)
	}

	dev, err := os.Open(imagePath)
	if err != nil {
		c.log.WithError(err).Error("ls: opening image")
		return subcommands.ExitFailure
	}
	defer dev.Close()

	d, err := ext2.TryMount(dev, ext2.WithLogger(c.log), ext2.ReadOnly())
	if err != nil {
		c.log.WithError(err).Error("ls: mounting")
		return subcommands.ExitFailure
	}
	defer d.Close()

	entries, err := d.ReadDir(inPath, "")
	if err != nil {
		c.log.WithError(err).Errorf("ls: reading %q", inPath)
		return subcommands.ExitFailure
	}
	for _, e := range entries {
		fmt.Printf("%-8d %s\n", e.Inode, e.Name)
	}
	return subcommands.ExitSuccess
}
