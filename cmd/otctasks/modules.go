package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alexisbeaulieu97/otctasks/internal/params"
	"github.com/alexisbeaulieu97/otctasks/internal/plugin"
	"github.com/alexisbeaulieu97/otctasks/internal/settings"
)

func newModulesCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect the available modules",
	}
	cmd.AddCommand(newModulesListCmd(root))
	cmd.AddCommand(newModulesShowCmd(root))
	return cmd
}

func newModulesListCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := modulesRenderer(cmd, root)
			if err != nil {
				return err
			}
			return renderModuleList(r, plugin.DefaultRegistry().List())
		},
	}
}

func newModulesShowCmd(root *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <module>",
		Short: "Show the parameters a module accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := modulesRenderer(cmd, root)
			if err != nil {
				return err
			}
			impl, err := plugin.DefaultRegistry().Get(args[0])
			if err != nil {
				return newCommandError("show module", args[0], err, "Run 'otctasks modules list' to see the available modules.")
			}
			return renderModule(r, impl.PluginMetadata(), params.Describe(impl.Schema()))
		},
	}
}

func modulesRenderer(cmd *cobra.Command, root *rootFlags) (*renderer, error) {
	s, err := settings.Load(settings.Options{ConfigFile: root.settingsFile, Flags: cmd.Flags()})
	if err != nil {
		return nil, err
	}
	return newRenderer(cmd, s.Output), nil
}

func renderModuleList(r *renderer, modules []plugin.PluginMetadata) error {
	if r.format == settings.OutputTable {
		rows := make([][]string, 0, len(modules))
		for _, meta := range modules {
			rows = append(rows, []string{meta.Name, meta.Version, string(meta.Mode), meta.PayloadKey, meta.Description})
		}
		r.table([]string{"Module", "Version", "Mode", "Payload", "Description"}, rows)
		return nil
	}

	out := make([]map[string]any, 0, len(modules))
	for _, meta := range modules {
		out = append(out, metadataMap(meta))
	}
	return r.encode(out)
}

func renderModule(r *renderer, meta plugin.PluginMetadata, fields []params.Field) error {
	if r.format == settings.OutputTable {
		fmt.Fprintf(r.out, "%s %s (%s): %s\n", meta.Name, meta.Version, meta.Mode, meta.Description)
		rows := make([][]string, 0, len(fields))
		for _, f := range fields {
			required := fmt.Sprint(f.Required)
			if f.Condition != "" {
				required = f.Condition
			}
			rows = append(rows, []string{f.Name, f.Type, required, f.Default, strings.Join(f.Choices, ", "), f.Doc})
		}
		r.table([]string{"Parameter", "Type", "Required", "Default", "Choices", "Description"}, rows)
		return nil
	}

	out := metadataMap(meta)
	out["params"] = fields
	return r.encode(out)
}

func metadataMap(meta plugin.PluginMetadata) map[string]any {
	return map[string]any{
		"name":        meta.Name,
		"version":     meta.Version,
		"api_version": meta.APIVersion,
		"mode":        string(meta.Mode),
		"payload_key": meta.PayloadKey,
		"description": meta.Description,
	}
}
