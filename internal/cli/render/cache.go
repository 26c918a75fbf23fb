package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

// RenderCache prints the EOA deployment cache sorted by address.
func RenderCache(out io.Writer, path string, entries map[string]common.Address) error {
	if len(entries) == 0 {
		color.New(color.FgYellow).Fprintf(out, "No deployments recorded in %s\n", path)
		return nil
	}
	color.New(color.FgCyan, color.Bold).Fprintf(out, "%d deployments recorded in %s\n", len(entries), path)

	keys := lo.Keys(entries)
	sort.Slice(keys, func(i, j int) bool {
		return entries[keys[i]].Cmp(entries[keys[j]]) < 0
	})

	t := newTable()
	t.SetOutputMirror(out)
	t.AppendHeader([]any{"Address", "Init Code"})
	for _, k := range keys {
		t.AppendRow([]any{entries[k].Hex(), shortKey(k)})
	}
	t.Render()
	return nil
}

func shortKey(key string) string {
	if len(key) <= 20 {
		return key
	}
	return fmt.Sprintf("%s…%s", key[:10], key[len(key)-8:])
}
