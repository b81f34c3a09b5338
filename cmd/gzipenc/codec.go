package main

import (
	"bytes"
	"io"
	"time"

	"github.com/nfam/gzipenc"
	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var (
		level int
		size  bool
		mtime int64
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode stdin as a gzip container on stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enc := gzipenc.Encoder{Level: level, Size: size}
			if mtime >= 0 {
				enc.Clock = gzipenc.FixedClock(time.Unix(mtime, 0))
			}

			w := gzipenc.NewWriterEncoder(cmd.OutOrStdout(), enc)
			if _, err := w.ReadFrom(cmd.InOrStdin()); err != nil {
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().IntVarP(&level, "level", "l", gzipenc.DefaultLevel, "deflate level (1-9)")
	cmd.Flags().BoolVar(&size, "size", false, "append the RFC 1952 ISIZE trailer field")
	cmd.Flags().Int64Var(&mtime, "mtime", -1, "modification time in Unix seconds (-1 for now)")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file]",
		Short: "Decode a gzip container from a file or stdin to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				rc, err := gzipenc.OpenReader(args[0])
				if err != nil {
					return err
				}
				defer rc.Close()
				_, err = rc.WriteTo(cmd.OutOrStdout())
				return err
			}

			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			r, err := gzipenc.NewReader(bytes.NewReader(data), int64(len(data)))
			if err != nil {
				return err
			}
			_, err = r.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
	return cmd
}
