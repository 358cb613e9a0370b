package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"

	"github.com/ext2fs/ext2fs/ext2"
)

type catCommand struct {
	log *logrus.Logger
}

func (*catCommand) Name() string     { return "cat" }
func (*catCommand) Synopsis() string { return "print a file's contents from an ext2 image" }
func (*catCommand) Usage() string {
	return "cat <image> <path>:\n  write the file at path inside image to stdout.\n"
}
func (*catCommand) SetFlags(*flag.FlagSet) {}

func (c *catCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		c.log.Error("cat: expected <image> <path>")
		return subcommands.ExitUsageError
	}
	imagePath, inPath := f.Arg(0), f.Arg(1)

	dev, err := os.Open(imagePath)
	if err != nil {
		c.log.WithError(err).Error("cat: opening image")
		return subcommands.ExitFailure
	}
	defer dev.Close()

	d, err := ext2.TryMount(dev, ext2.WithLogger(c.log), ext2.ReadOnly())
	if err != nil {
		c.log.WithError(err).Error("cat: mounting")
		return subcommands.ExitFailure
	}
	defer d.Close()

	file, err := d.OpenFile(inPath, "")
	if err != nil {
		c.log.WithError(err).Errorf("cat: opening %q", inPath)
		return subcommands.ExitFailure
	}
	if _, err := io.Copy(os.Stdout, file); err != nil {
		c.log.WithError(err).Errorf("cat: reading %q", inPath)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
