package main

// triage tool: dump what the orientation locator sees in given files.

import (
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"

	"exiffix/lib/exiftag"
	"exiffix/lib/orient"
)

func main() {
	verbose := flag.Bool("v", false, "spew the whole Info struct")

	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.PrintDefaults()
		return
	}

	for _, arg := range args {
		b, err := os.ReadFile(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "err reading %q: %v\n", arg, err)
			os.Exit(1)
		}

		inf, err := exiftag.Locate(b)
		if err != nil {
			fmt.Printf("%s: %v (treated as orientation 1)\n", arg, err)
			continue
		}

		t := orient.FromCode(inf.Orient)
		fmt.Printf("%s: orientation %d at offset %#x, rotate %d cw, mirrored %v\n",
			arg, inf.Orient, inf.ValueOff, t.Rotation, t.Mirrored)

		if *verbose {
			fmt.Print(spew.Sdump(inf))
		}
	}
}
