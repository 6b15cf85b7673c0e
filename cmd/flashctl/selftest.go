// cmd/flashctl/selftest.go
package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tamzrod/norflash/internal/flash"
	"github.com/tamzrod/norflash/internal/lfsfile"
)

func newSelftestCmd(opts *rootOptions) *cobra.Command {
	var block uint32

	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Erase/program/read one block and exercise the handle pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, func(e *env) error {
				if err := selftestFlash(e, block); err != nil {
					return err
				}
				if err := selftestPool(e.pool); err != nil {
					return err
				}
				e.log.Info("selftest passed", zap.Uint32("block", block))
				fmt.Fprintln(cmd.OutOrStdout(), "ok")
				return nil
			})
		},
	}

	cmd.Flags().Uint32Var(&block, "block", 255, "sector index used for the round trip")
	return cmd
}

func selftestFlash(e *env, block uint32) error {
	bd, err := flash.NewBlockDevice(flash.DefaultGeometry(), e.dev, 0)
	if err != nil {
		return err
	}
	if block >= bd.Geometry().BlockCount {
		return fmt.Errorf("selftest: block %d out of range", block)
	}

	want := make([]byte, flash.PageSize)
	for i := range want {
		want[i] = byte(i ^ 0xA5)
	}

	if err := bd.EraseBlock(block); err != nil {
		return err
	}
	if err := bd.ProgramBlock(block, 0, want); err != nil {
		return err
	}
	if err := bd.Sync(); err != nil {
		return err
	}

	got := make([]byte, len(want))
	if err := bd.ReadBlock(block, 0, got); err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return fmt.Errorf("selftest: read back mismatch in block %d", block)
	}
	return nil
}

func selftestPool(p *lfsfile.Pool) error {
	held := make([]*lfsfile.File, 0, lfsfile.Slots)
	defer func() {
		for _, f := range held {
			p.Release(f)
		}
	}()

	for {
		f, ok := p.Acquire()
		if !ok {
			break
		}
		held = append(held, f)
	}
	if len(held) != lfsfile.Slots {
		return fmt.Errorf("selftest: acquired %d handles, want %d", len(held), lfsfile.Slots)
	}

	f := held[0]
	f.SetGroup(lfsfile.GroupSystem)
	f.SetAuthorization(lfsfile.Authorization(0xF4))
	if err := f.SetOwner(lfsfile.SystemOwnerLocal); err != nil {
		return err
	}
	if err := f.SetCompany(lfsfile.SystemCompany); err != nil {
		return err
	}
	if err := f.SetDate(lfsfile.NotAvailable); err != nil {
		return err
	}
	if err := lfsfile.Validate(f); err != nil {
		return fmt.Errorf("selftest: %w", err)
	}
	return nil
}
