package config

import (
	"fmt"
	"sort"

	"github.com/atlanticdynamic/microhost/internal/fancy"
)

// String returns a pretty-printed tree representation of the config
func (c *BootConfig) String() string {
	return ConfigTree(c)
}

// ConfigTree renders a BootConfig as a tree
func ConfigTree(cfg *BootConfig) string {
	t := fancy.Tree()
	t.Root(fancy.RootStyle.Render(fmt.Sprintf("Microservice %s (%s)", cfg.Name, cfg.InstanceID)))

	mode := t.Child(fancy.HeaderStyle.Render("Mode"))
	mode.Child(fmt.Sprintf("Clustered: %t", cfg.Mode.Clustered))
	mode.Child(fmt.Sprintf("Batch: %t", cfg.Mode.Batch))
	mode.Child(fmt.Sprintf("Precompiled: %t", cfg.Mode.Precompiled))

	timeouts := t.Child(fancy.HeaderStyle.Render("Timeouts"))
	timeouts.Child(fmt.Sprintf("Lock: %s", cfg.Timeouts.Lock))
	timeouts.Child(fmt.Sprintf("Stop: %s", cfg.Timeouts.Stop))
	timeouts.Child(fmt.Sprintf("Dispose: %s", cfg.Timeouts.Dispose))

	logging := t.Child(fancy.HeaderStyle.Render("Logging"))
	logging.Child(fmt.Sprintf("Format: %s", cfg.Logging.Format))
	logging.Child(fmt.Sprintf("Level: %s", cfg.Logging.Level))
	logging.Child(fmt.Sprintf("Output: %s", cfg.Logging.Output))

	features := fancy.BranchNode("Features", fmt.Sprintf("(%d)", len(cfg.Features)))
	for _, f := range cfg.Features {
		node := fancy.NewComponentTree(fancy.ComponentStyle.Render(f.Name))
		keys := make([]string, 0, len(f.Settings))
		for k := range f.Settings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			node.AddBranch(fancy.TruncateString(fmt.Sprintf("%s: %v", k, f.Settings[k]), 60))
		}
		features.Child(node.Tree())
	}
	t.Child(features)

	return t.String()
}
