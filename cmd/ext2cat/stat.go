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

type statCommand struct {
	log *logrus.Logger
}

func (*statCommand) Name() string     { return "stat" }
func (*statCommand) Synopsis() string { return "print inode metadata for a path in an ext2 image" }
func (*statCommand) Usage() string {
	return "stat <image> <path>:\n  print metadata for the inode at path inside image.\n"
}
func (*statCommand) SetFlags(*flag.FlagSet) {}

func (c *statCommand) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		c.log.Error("stat: expected <image> <path>")
		return subcommands.ExitUsageError
	}
	imagePath, inPath := f.Arg(0), f.Arg(1)

	dev, err := os.OpenFile(imagePath, os.O_RDWR, 0)
	if err != nil {
		c.log.WithError(err).Error("stat: opening image")
		return subcommands.ExitFailure
	}
	defer dev.Close()

	d, err := ext2.TryMount(dev, ext2.WithLogger(c.log))
	if err != nil {
		c.log.WithError(err).Error("stat: mounting")
		return subcommands.ExitFailure
	}
	defer d.Close()

	st, err := d.Stat(inPath, "")
	if err != nil {
		c.log.WithError(err).Errorf("stat: statting %q", inPath)
		return subcommands.ExitFailure
	}

	fmt.Printf("inode:      %d\n", st.InodeNumber)
	fmt.Printf("mode:       0%o\n", st.Mode)
	fmt.Printf("links:      %d\n", st.LinksCount)
	fmt.Printf("uid/gid:    %d/%d\n", st.UID, st.GID)
	fmt.Printf("size:       %d\n", st.Size)
	fmt.Printf("block size: %d\n", st.BlockSize)
	fmt.Printf("blocks:     %d\n", st.BlockCount)
	fmt.Printf("atime:      %d\n", st.Atime)
	fmt.Printf("mtime:      %d\n", st.Mtime)
	fmt.Printf("ctime:      %d\n", st.Ctime)
	return subcommands.ExitSuccess
}
