package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"vectorcore-go/chip"
	"vectorcore-go/errcode"
	"vectorcore-go/platform"
	"vectorcore-go/vector"
	"vectorcore-go/x/conv"
	"vectorcore-go/x/logx"
	"vectorcore-go/x/strconvx"
)

var (
	bootOpts = struct {
		noRegion bool
		launch   bool
		synth    bool
		register []string
		enable   []int
		raise    []int
		verbose  bool
		tables   bool
	}{}

	tableCore int

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List the embedded chip profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, name := range chip.Names() {
				p, err := chip.Lookup(name)
				if err != nil {
					return err
				}
				c := p.Primary()
				fmt.Fprintf(w, "%-10s %s %3d MHz  cores=%d  entries=%d  launch=%s\n",
					name, c.Layout.Arch, p.CPUHz/1_000_000, len(p.Cores), c.Layout.Len(), p.Launch)
			}
			return nil
		},
	}

	tableCmd = &cobra.Command{
		Use:   "table <chip>",
		Short: "Print the linked (read-only) vector table of one core",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := chip.Lookup(args[0])
			if err != nil {
				return err
			}
			c, ok := p.Core(tableCore)
			if !ok {
				return errcode.New(errcode.UnknownCore, "vecsim", "core "+conv.Int(tableCore))
			}
			rom, err := image(platform.NewSim(), c)
			if err != nil {
				return err
			}
			printTable(cmd.OutOrStdout(), rom)
			return nil
		},
	}

	bootCmd = &cobra.Command{
		Use:   "boot <chip>",
		Short: "Boot a chip profile on the simulator",
		Long: "Boot the primary core of a chip profile on the register simulator, optionally " +
			"launch the secondary cores, then register and enable interrupts on the primary.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !bootOpts.verbose {
				defer logx.SetOutput(nil)()
			}
			p, err := chip.Lookup(args[0])
			if err != nil {
				return err
			}
			reg, err := parseRegistrations(bootOpts.register)
			if err != nil {
				return err
			}
			res, err := simulate(p, simOptions{
				noRegion: bootOpts.noRegion,
				launch:   bootOpts.launch,
				synth:    bootOpts.synth,
				register: reg,
				enable:   bootOpts.enable,
				raise:    bootOpts.raise,
			})
			if res != nil {
				printResult(cmd.OutOrStdout(), res, bootOpts.tables)
			}
			return err
		},
	}
)

func init() {
	f := bootCmd.Flags()
	f.BoolVar(&bootOpts.noRegion, "no-region", false, "pretend the memory map has no writable region for the table")
	f.BoolVarP(&bootOpts.launch, "launch", "l", false, "launch secondary cores after the primary boots")
	f.BoolVar(&bootOpts.synth, "synth", false, "program an Si5351 on the board I2C bus during the clock step")
	f.StringArrayVarP(&bootOpts.register, "register", "r", nil, "register a handler, index=address (repeatable)")
	f.IntSliceVarP(&bootOpts.enable, "enable", "e", nil, "enable abstract interrupt indices")
	f.IntSliceVarP(&bootOpts.raise, "raise", "x", nil, "raise abstract interrupt indices after registering and enabling")
	f.BoolVarP(&bootOpts.verbose, "verbose", "v", false, "show boot log lines")
	f.BoolVarP(&bootOpts.tables, "tables", "t", false, "dump each core's active table")

	tableCmd.Flags().IntVarP(&tableCore, "core", "c", 0, "core id")
}

func parseRegistrations(in []string) (map[int]uint32, error) {
	out := map[int]uint32{}
	for _, s := range in {
		k, v, ok := strings.Cut(s, "=")
		if !ok {
			return nil, errcode.New(errcode.InvalidParams, "vecsim", "registration "+s+" is not index=address")
		}
		idx, err := strconvx.ParseU32(k)
		if err != nil {
			return nil, err
		}
		addr, err := strconvx.ParseU32(v)
		if err != nil {
			return nil, err
		}
		out[int(idx)] = addr
	}
	return out, nil
}

func printResult(w io.Writer, res *simResult, tables bool) {
	for _, r := range res.reports {
		fmt.Fprintf(w, "core %d: %s  relocated=%t  systick=%t  vtor=%s  steps=%s",
			r.Core, r.State, r.Relocated, r.TickArmed, conv.Addr(r.VTOR), strings.Join(r.Steps, ","))
		if r.Error != "" {
			fmt.Fprintf(w, "  error=%s", r.Error)
		}
		fmt.Fprintln(w)
	}
	if res.i2c != nil {
		for _, wr := range res.i2c.writes {
			fmt.Fprintf(w, "i2c 0x%02X: reg %3d <- 0x%02X\n", wr.Addr, wr.Reg, wr.Val)
		}
	}
	for _, l := range res.launch {
		fmt.Fprintf(w, "core %d: launched  vtor=%s\n", l.Core, conv.Addr(l.VTOR))
	}
	for _, tk := range res.taken {
		if tk.Masked {
			fmt.Fprintf(w, "raise %d: masked, left pending\n", tk.Index)
			continue
		}
		fmt.Fprintf(w, "raise %d: vectored to %s\n", tk.Index, conv.Addr(tk.Handler))
	}
	for _, err := range res.halts {
		fmt.Fprintf(w, "halted: %v\n", err)
	}
	if len(res.cores) > 0 {
		primary := res.cores[0]
		var on []string
		for line := uint32(0); line < uint32(primary.ctx.Layout().Peripherals); line++ {
			if primary.nvic.Enabled(line) {
				on = append(on, conv.Int(int(line)))
			}
		}
		if len(on) > 0 {
			fmt.Fprintf(w, "core %d: enabled lines %s\n", primary.ctx.ID(), strings.Join(on, ","))
		}
	}
	if !tables {
		return
	}
	for _, c := range res.cores {
		fmt.Fprintf(w, "\ncore %d active table:\n", c.ctx.ID())
		printTable(w, c.ctx.Active())
	}
}

func printTable(w io.Writer, t *vector.Table) {
	l := t.Layout()
	mode := "rom"
	if t.Mutable() {
		mode = "ram"
	}
	fmt.Fprintf(w, "base=%s  %s  entries=%d  align=%d\n", conv.Addr(t.Base()), mode, t.Len(), l.Alignment())
	for i := vector.Index(0); int(i) < t.Len(); i++ {
		s, _ := t.Slot(i)
		fmt.Fprintf(w, "%4d  %-12s %-9s %s\n", i, l.Name(i), s.Kind, conv.Addr(s.Addr))
	}
}
