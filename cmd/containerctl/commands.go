// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>...",
		Short: "Print the value of each id",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			for _, id := range args {
				v, err := a.resolver.Get(ctx, id)
				if err != nil {
					return err
				}

				s, err := formatValue(v)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s=%s\n", id, s)
			}
			return nil
		}),
	}
}

func (a *app) hasCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "has <id>...",
		Short: "Print whether each id can be resolved",
		Args:  cobra.MinimumNArgs(1),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			for _, id := range args {
				ok, err := a.resolver.Has(ctx, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s=%s\n", id, strconv.FormatBool(ok))
			}
			return nil
		}),
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <value>",
		Short: "Set the value of id in every writable source",
		Args:  cobra.ExactArgs(2),
		RunE: a.runE(func(cmd *cobra.Command, args []string) error {
			return a.resolver.Set(cmd.Context(), args[0], parseValue(args[1]))
		}),
	}
}

// formatValue renders structured values as flow style YAML.
func formatValue(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case map[string]any, map[any]any, []any:
	default:
		return fmt.Sprint(x), nil
	}

	var n yaml.Node
	err := n.Encode(v)
	if err != nil {
		return "", err
	}
	flow(&n)

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	err = enc.Encode(&n)
	if err != nil {
		return "", err
	}
	err = enc.Close()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

func flow(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style = yaml.FlowStyle
	}
	for _, c := range n.Content {
		flow(c)
	}
}
