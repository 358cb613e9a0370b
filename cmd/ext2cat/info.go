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

type infoCommand struct {
	log *logrus.Logger
}

func (*infoCommand) Name() string     { return "info" }
func (*infoCommand) Synopsis() string { return "print superblock summary for an ext2 image" }
func (*infoCommand) Usage() string {
	return "info <image>:\n  print volume name, UUID, block size, and free counts.\n"
}
func (*infoCommand) SetFlags(*flag.FlagSet) {}

func (c *infoCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 1 {
		c.log.Error("info: missing image path")
		return subcommands.ExitUsageError
	}
	imagePath := f.Arg(0)

	dev, err := os.Open(imagePath)
	if err != nil {
		c.log.WithError(err).Error("info: opening image")
		return subcommands.ExitFailure
	}
	defer dev.Close()

	d, err := ext2.TryMount(dev, ext2.WithLogger(c.log), ext2.ReadOnly())
	if err != nil {
		c.log.WithError(err).Error("info: mounting")
		return subcommands.ExitFailure
	}
	defer d.Close()

	info, err := d.Info()
	if err != nil {
		c.log.WithError(err).Error("info: reading superblock")
		return subcommands.ExitFailure
	}

	fmt.Printf("volume name:  %q\n", info.VolumeName)
	fmt.Printf("uuid:         %s\n", info.UUID)
	fmt.Printf("block size:   %d\n", info.BlockSize)
	fmt.Printf("inodes:       %d (%d free)\n", info.InodesCount, info.FreeInodesCount)
	fmt.Printf("blocks:       %d (%d free)\n", info.BlocksCount, info.FreeBlocksCount)
	fmt.Printf("block groups: %d\n", info.GroupCount)
	return subcommands.ExitSuccess
}
