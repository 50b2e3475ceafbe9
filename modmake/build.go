package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	novaultVersion = "0.1.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())
	b.Test().Does(Go().TestAll())

	novault := NewAppBuild("novault", "cmd/novault", novaultVersion)
	novault.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", novaultVersion).
			CgoEnabled(false)
	})
	novault.Variant("linux", "amd64")
	novault.Variant("linux", "arm64")
	novault.Variant("darwin", "amd64")
	novault.Variant("darwin", "arm64")
	novault.Variant("windows", "amd64")
	b.ImportApp(novault)

	b.Execute()
}
