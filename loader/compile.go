package loader

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/parley/types"
)

// rawLocation holds a location table before compilation.
type rawLocation struct {
	id    string
	table *lua.LTable
}

// rawEntity holds an entity table before compilation.
type rawEntity struct {
	id       string
	category string
	table    *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// tableToStringMap converts a Lua table to a map[string]string.
func tableToStringMap(tbl *lua.LTable) map[string]string {
	if tbl == nil {
		return nil
	}
	m := map[string]string{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			if vs, ok := v.(lua.LString); ok {
				m[string(ks)] = string(vs)
			}
		}
	})
	return m
}

// tableToStringSlice converts an array-style Lua table to a []string.
func tableToStringSlice(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// compile converts the collected Lua data into Content.
func compile(coll *collector) (*Content, error) {
	content := &Content{}

	if coll.world == nil {
		return nil, fmt.Errorf("no World{} definition found")
	}
	content.World = types.WorldDef{
		Title:   getString(coll.world, "title"),
		Author:  getString(coll.world, "author"),
		Version: getString(coll.world, "version"),
		Start:   getString(coll.world, "start"),
		Intro:   getString(coll.world, "intro"),
	}

	for _, raw := range coll.locations {
		content.Locations = append(content.Locations, types.LocationDef{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			Description: getString(raw.table, "description"),
			Exits:       tableToStringMap(getTable(raw.table, "exits")),
		})
	}

	for _, raw := range coll.entities {
		content.Entities = append(content.Entities, types.EntityTemplate{
			ID:          raw.id,
			Name:        getString(raw.table, "name"),
			Aliases:     tableToStringSlice(getTable(raw.table, "aliases")),
			Adjectives:  tableToStringSlice(getTable(raw.table, "adjectives")),
			Category:    raw.category,
			Tier:        getString(raw.table, "tier"),
			Description: getString(raw.table, "description"),
			Location:    getString(raw.table, "location"),
		})
	}

	// Sort so registration order is stable across content file layouts.
	sort.Slice(content.Locations, func(i, j int) bool {
		return content.Locations[i].ID < content.Locations[j].ID
	})
	sort.Slice(content.Entities, func(i, j int) bool {
		return content.Entities[i].ID < content.Entities[j].ID
	})

	return content, nil
}
