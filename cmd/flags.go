package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags are registered in init(), so a lookup error is a programming bug and
// panics instead of being returned.

func mustGet[T any](cmd *cobra.Command, name string, get func(*pflag.FlagSet, string) (T, error)) T {
	val, err := get(cmd.Flags(), name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	return mustGet(cmd, name, (*pflag.FlagSet).GetBool)
}

func mustGetInt(cmd *cobra.Command, name string) int {
	return mustGet(cmd, name, (*pflag.FlagSet).GetInt)
}

func mustGetString(cmd *cobra.Command, name string) string {
	return mustGet(cmd, name, (*pflag.FlagSet).GetString)
}

func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	return mustGet(cmd, name, (*pflag.FlagSet).GetFloat64)
}
