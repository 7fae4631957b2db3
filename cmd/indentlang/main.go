// cmd/indentlang/main.go
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"indentlang/internal/diag"
	"indentlang/internal/interp"
	"indentlang/internal/registry"
	"indentlang/internal/source"
	"indentlang/internal/value"
)

func main() {
	debug := flag.Bool("debug", false, "dump the live-object registry to object.dsv on exit")
	importPath := flag.String("importpath", "", "comma-separated extra search paths for import")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: indentlang [-debug] [-importpath dir1,dir2] <file>")
		os.Exit(1)
	}
	mainPath := flag.Arg(0)

	var searchPaths []string
	if *importPath != "" {
		searchPaths = strings.Split(*importPath, ",")
	}

	rdr, err := source.NewReader(mainPath, searchPaths)
	if err != nil {
		log.Fatalf("cannot open %s: %v", mainPath, err)
	}

	var reg *registry.Registry
	if *debug {
		reg = registry.New()
		value.SetRegistryHook(reg)
	}

	run(rdr, reg, *debug)
}

func run(rdr *source.Reader, reg *registry.Registry, debug bool) {
	defer func() {
		if r := recover(); r != nil {
			if derr, ok := r.(*diag.Error); ok {
				fmt.Fprintln(os.Stderr, derr.Error())
				os.Exit(1)
			}
			panic(r)
		}
	}()

	it := interp.New(rdr, os.Stdout, os.Stdin, reg, debug)
	it.Run()
}
