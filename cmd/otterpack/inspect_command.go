package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"otterpack/internal/config"
	"otterpack/internal/resources"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [BINARY]",
		Short: "Show the archive bundled into an executable",
		Long:  "Scans BINARY (default: this executable) for a bundled archive and lists its entries without extracting them.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			container, err := inspectTarget(args)
			if err != nil {
				return err
			}
			origin, err := resources.LocateIn(container, cfg.SearchWindowBytes())
			if err != nil {
				return err
			}
			listing, err := resources.List(origin)
			if err != nil {
				return err
			}
			printListing(cmd, listing)
			return nil
		},
	}
}

func inspectTarget(args []string) (string, error) {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return config.ExpandPath(strings.TrimSpace(args[0]))
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func printListing(cmd *cobra.Command, listing resources.Listing) {
	out := cmd.OutOrStdout()
	colorize := isTerminal(out)
	origin := listing.Origin
	fmt.Fprintln(out, renderSectionHeader("Bundled archive", colorize))
	fmt.Fprintln(out, renderStatusLine("Container", statusInfo, origin.ContainerPath, colorize))
	fmt.Fprintln(out, renderStatusLine("Offset", statusInfo, strconv.FormatInt(origin.Offset, 10), colorize))
	fmt.Fprintln(out, renderStatusLine("Length", statusInfo, strconv.FormatInt(origin.Length, 10), colorize))
	fmt.Fprintln(out, renderStatusLine("Digest", statusInfo, listing.Digest, colorize))

	rows := make([][]string, 0, len(listing.Entries))
	var total uint64
	extracted := 0
	for _, e := range listing.Entries {
		rows = append(rows, []string{e.Name, strconv.FormatUint(e.Size, 10), e.Mode.String(), yesNo(e.Flat)})
		total += e.Size
		if e.Flat {
			extracted++
		}
	}
	fmt.Fprintln(out, tableSpec{
		headers: []string{"Entry", "Size", "Mode", "Extracted"},
		aligns:  []columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
		rows:    rows,
		footer:  []string{fmt.Sprintf("%d entries", len(listing.Entries)), strconv.FormatUint(total, 10), "", strconv.Itoa(extracted)},
	}.render())
}
