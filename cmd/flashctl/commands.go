// cmd/flashctl/commands.go
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/norflash/internal/flash"
	"github.com/tamzrod/norflash/internal/lfsfile"
)

func parseU32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return uint32(v), nil
}

// checkSpan rejects requests the driver would treat as precondition failures.
func checkSpan(addr uint32, n int) error {
	if addr >= flash.Capacity {
		return fmt.Errorf("address 0x%06X out of range", addr)
	}
	if n > flash.Capacity {
		return fmt.Errorf("length %d exceeds capacity", n)
	}
	return nil
}

// ---- read ----

func newReadCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "read <addr> <len>",
		Short: "Read and hex-dump a range",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseU32("addr", args[0])
			if err != nil {
				return err
			}
			n, err := parseU32("len", args[1])
			if err != nil {
				return err
			}
			if err := checkSpan(addr, int(n)); err != nil {
				return err
			}

			return withEnv(opts, func(e *env) error {
				buf := make([]byte, n)
				if err := e.dev.Read(addr, buf); err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(buf))
				return nil
			})
		},
	}
}

// ---- program ----

func newProgramCmd(opts *rootOptions) *cobra.Command {
	var (
		hexData string
		file    string
	)

	cmd := &cobra.Command{
		Use:   "program <addr>",
		Short: "Program bytes (the target must be erased)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseU32("addr", args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch {
			case hexData != "" && file != "":
				return fmt.Errorf("--hex and --file are mutually exclusive")
			case hexData != "":
				if data, err = hex.DecodeString(strings.ReplaceAll(hexData, " ", "")); err != nil {
					return fmt.Errorf("--hex: %w", err)
				}
			case file != "":
				if data, err = os.ReadFile(file); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --hex or --file is required")
			}
			if err := checkSpan(addr, len(data)); err != nil {
				return err
			}

			return withEnv(opts, func(e *env) error {
				if err := e.dev.Program(addr, data); err != nil {
					return err
				}
				e.log.Info("programmed", zap.Uint32("addr", addr), zap.Int("bytes", len(data)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&hexData, "hex", "", "payload as hex")
	cmd.Flags().StringVar(&file, "file", "", "payload file")
	return cmd
}

// ---- erase ----

func newEraseCmd(opts *rootOptions) *cobra.Command {
	var size uint32

	cmd := &cobra.Command{
		Use:   "erase <addr>",
		Short: "Erase a 4 KiB sector or 64 KiB block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseU32("addr", args[0])
			if err != nil {
				return err
			}
			if err := checkSpan(addr, int(size)); err != nil {
				return err
			}

			return withEnv(opts, func(e *env) error {
				if err := e.dev.Erase(addr, size); err != nil {
					return err
				}
				e.log.Info("erased", zap.Uint32("addr", addr), zap.Uint32("size", size))
				return nil
			})
		},
	}

	cmd.Flags().Uint32Var(&size, "size", flash.SectorSize, "erase size: 4096 or 65536")
	return cmd
}

// ---- status ----

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Read the status register",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				s, err := e.dev.ReadStatus()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "status=0x%02X wip=%t wel=%t\n",
					s, s&flash.StatusWIP != 0, s&flash.StatusWEL != 0)
				return nil
			})
		},
	}
}

// ---- attrs ----

func newAttrsCmd() *cobra.Command {
	var (
		auth  string
		flags string
	)

	cmd := &cobra.Command{
		Use:   "attrs",
		Short: "Show the attribute layout and decode authorization/flags bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			for _, l := range lfsfile.Layout() {
				fmt.Fprintf(out, "type=%d offset=%-3d size=%d\n", l.Type, l.Offset, l.Size)
			}

			if flags != "" {
				v, err := strconv.ParseUint(flags, 0, 8)
				if err != nil {
					return fmt.Errorf("--flags: %w", err)
				}
				fmt.Fprintf(out, "group=%s\n", lfsfile.OwnerGroup(byte(v)))
			}
			if auth != "" {
				v, err := strconv.ParseUint(auth, 0, 8)
				if err != nil {
					return fmt.Errorf("--auth: %w", err)
				}
				a := lfsfile.Authorization(v)
				fmt.Fprintf(out, "authorization=%s\n", a)
				for _, g := range []lfsfile.Group{
					lfsfile.GroupSystem, lfsfile.GroupPartner,
					lfsfile.GroupManufacturer, lfsfile.GroupUser,
				} {
					acc := a.For(g)
					fmt.Fprintf(out, "  %-4s read=%t write=%t\n", g, acc.CanRead(), acc.CanWrite())
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&auth, "auth", "", "authorization byte to decode")
	cmd.Flags().StringVar(&flags, "flags", "", "flags byte to decode")
	return cmd
}
