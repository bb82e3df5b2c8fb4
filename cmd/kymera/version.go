package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"kymera/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show kymera build fingerprints",
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := stringFlag(cmd, "format")
	if err != nil {
		return err
	}
	var fields version.Fields
	for name, dst := range map[string]*bool{"hash": &fields.Hash, "message": &fields.Message, "date": &fields.Date} {
		if *dst, err = cmd.Flags().GetBool(name); err != nil {
			return fmt.Errorf("failed to get %s flag: %w", name, err)
		}
	}
	full, err := cmd.Flags().GetBool("full")
	if err != nil {
		return fmt.Errorf("failed to get full flag: %w", err)
	}
	if full {
		fields = version.Fields{Hash: true, Message: true, Date: true}
	}

	info := version.Collect(fields)
	switch format {
	case "json":
		return version.JSON(cmd.OutOrStdout(), info)
	case "pretty":
		version.Pretty(cmd.OutOrStdout(), info, fields, sess.color)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}
