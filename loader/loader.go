// Package loader loads Lua world content into Go structs at startup.
// The Lua VM is sandboxed and discarded after loading — zero Lua at runtime.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/nathoo/parley/types"
)

// Content is the compiled, validated output of a content directory.
type Content struct {
	World     types.WorldDef
	Locations []types.LocationDef
	Entities  []types.EntityTemplate
}

// collector accumulates Lua definitions during file execution.
type collector struct {
	world     *lua.LTable
	locations []rawLocation
	entities  []rawEntity
}

// Load reads all .lua files from dir, compiles them into world content,
// validates references, and returns the immutable Content.
func Load(dir string) (*Content, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading content directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}
	luaFiles = sortedLuaFiles(luaFiles)

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, f := range luaFiles {
		path := filepath.Join(dir, f)
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	content, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling world content: %w", err)
	}

	if err := validate(content); err != nil {
		return nil, err
	}
	return content, nil
}

// registerAPI registers the content constructors as Lua globals.
// Location/Item/Creature/Npc are curried: Name("id") returns a function
// that takes the definition table.
func registerAPI(L *lua.LState, coll *collector) {
	L.SetGlobal("World", L.NewFunction(func(L *lua.LState) int {
		coll.world = L.CheckTable(1)
		return 0
	}))

	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.locations = append(coll.locations, rawLocation{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))

	for _, kind := range []string{"item", "creature", "npc"} {
		kind := kind
		global := strings.ToUpper(kind[:1]) + kind[1:]
		L.SetGlobal(global, L.NewFunction(func(L *lua.LState) int {
			id := L.CheckString(1)
			L.Push(L.NewFunction(func(L *lua.LState) int {
				coll.entities = append(coll.entities, rawEntity{
					id: id, category: kind, table: L.CheckTable(1),
				})
				return 0
			}))
			return 1
		}))
	}
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}
}

// sortedLuaFiles returns .lua files with world.lua first and the rest
// alphabetical, so world metadata is defined before entities reference it.
func sortedLuaFiles(files []string) []string {
	var worldFile string
	var others []string
	for _, f := range files {
		if f == "world.lua" {
			worldFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if worldFile != "" {
		return append([]string{worldFile}, others...)
	}
	return others
}
