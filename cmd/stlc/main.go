// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Command stlc compiles a small sample strict type library and writes its
// canonical text dump and an ascii-armored sample value to disk, exercising
// the full build -> compile -> assemble -> typify -> render -> armor
// pipeline from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli"
	env "github.com/xyproto/env/v2"

	"github.com/strictypes/strictypes"
)

func main() {
	app := cli.NewApp()
	app.Name = "stlc"
	app.Usage = "compile and inspect strict type libraries"
	app.Version = "0.1.0"
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile the built-in sample library and write its outputs",
			Flags: []cli.Flag{
				cli.StringFlag{Name: "sty", Usage: "library name to compile (sample is built in)", Value: "sample"},
				cli.StringFlag{Name: "stl", Usage: "path to write the canonical text dump"},
				cli.StringFlag{Name: "sta", Usage: "path to write an ascii-armored sample value"},
			},
			Action: runCompile,
		},
	}
	if err := app.Run(os.Args); err != nil {
		errColor(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func errColor(w *os.File, format string, args ...interface{}) {
	if isatty.IsTerminal(w.Fd()) {
		color.New(color.FgRed).Fprintf(w, format, args...)
		return
	}
	fmt.Fprintf(w, format, args...)
}

func okColor(format string, args ...interface{}) {
	if isatty.IsTerminal(os.Stdout.Fd()) {
		color.New(color.FgGreen).Printf(format, args...)
		return
	}
	fmt.Printf(format, args...)
}

func runCompile(c *cli.Context) error {
	outDir := env.Str("STRICT_OUT_DIR", ".")
	quiet := !isatty.IsTerminal(os.Stdout.Fd())

	bar := progressbar.NewOptions(6,
		progressbar.OptionSetDescription("compiling "+c.String("sty")),
		progressbar.OptionSetVisibility(!quiet),
	)
	step := func() { bar.Add(1) }

	sym, err := buildSampleLibrary()
	if err != nil {
		return fmt.Errorf("building library: %w", err)
	}
	step()

	compiled, err := strictypes.CompileLib(sym)
	if err != nil {
		return fmt.Errorf("compiling library: %w", err)
	}
	step()

	sys, err := strictypes.NewSystemBuilder().Import(compiled).Finalize()
	if err != nil {
		return fmt.Errorf("assembling type system: %w", err)
	}
	step()

	id, val := sampleValue(sys)
	typed, err := strictypes.Typify(sys, id, val)
	if err != nil {
		return fmt.Errorf("typifying sample value: %w", err)
	}
	step()

	dump := strictypes.DumpLib(compiled)
	step()

	armored, err := strictypes.Armor(sys, typed.Id, typed.Val)
	if err != nil {
		return fmt.Errorf("armoring sample value: %w", err)
	}
	step()

	stlPath := c.String("stl")
	if stlPath == "" {
		stlPath = filepath.Join(outDir, "sample.stl")
	}
	if err := os.WriteFile(stlPath, []byte(dump), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", stlPath, err)
	}

	staPath := c.String("sta")
	if staPath == "" {
		staPath = filepath.Join(outDir, "sample.sta")
	}
	if err := os.WriteFile(staPath, []byte(armored), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", staPath, err)
	}

	okColor("wrote %s and %s\n", stlPath, staPath)
	return nil
}

// buildSampleLibrary declares a tiny library demonstrating a struct, a
// union, an ascii string and a list, enough to exercise the full pipeline
// end to end.
func buildSampleLibrary() (*strictypes.SymbolicLib, error) {
	u32 := strictypes.NewPrimitive[strictypes.TranspileRef](strictypes.U32)

	fields, err := strictypes.NewStructBuilder().
		Field(strictypes.MustFieldName("x"), strictypes.NewEmbeddedRef(&u32)).
		Field(strictypes.MustFieldName("y"), strictypes.NewEmbeddedRef(&u32)).
		Build()
	if err != nil {
		return nil, err
	}

	unit := strictypes.NewPrimitive[strictypes.TranspileRef](strictypes.Unit)
	variants, err := strictypes.NewUnionBuilder().
		Tagged(0, strictypes.MustVariantName("red"), strictypes.NewEmbeddedRef(&unit)).
		Tagged(1, strictypes.MustVariantName("green"), strictypes.NewEmbeddedRef(&unit)).
		Tagged(2, strictypes.MustVariantName("blue"), strictypes.NewEmbeddedRef(&unit)).
		Build()
	if err != nil {
		return nil, err
	}

	return strictypes.NewLibBuilder(strictypes.MustLibName("sample")).
		RegisterStruct(strictypes.MustTypeName("Point"), fields).
		RegisterUnion(strictypes.MustTypeName("Color"), variants).
		RegisterAsciiStr(strictypes.MustTypeName("Name"), strictypes.Sizing{Min: 1, Max: 64}).
		RegisterList(strictypes.MustTypeName("Path"), strictypes.NewNamedRef(strictypes.MustTypeName("Point")), strictypes.Sizing{Min: 0, Max: 4096}).
		Build()
}

func sampleValue(sys *strictypes.TypeSystem) (strictypes.SemId, strictypes.StrictVal) {
	id, _ := strictypes.NewSymbolicSys(sys).IdByName("sample.Point")
	val := strictypes.VStruct(
		strictypes.StrictValField{Name: strictypes.MustFieldName("x"), Val: strictypes.VNumber(strictypes.NumFromUint64(3))},
		strictypes.StrictValField{Name: strictypes.MustFieldName("y"), Val: strictypes.VNumber(strictypes.NumFromUint64(4))},
	)
	return id, val
}
