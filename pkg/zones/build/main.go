// Command build regenerates zones_gen.go from a tzdata.zi file.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"go/format"
	"io"
	"os"
	"regexp"
	"slices"
	"strings"
)

func main() {
	in := flag.String("in", "/usr/share/zoneinfo/tzdata.zi", "tzdata.zi to read")
	out := flag.String("out", "zones_gen.go", "file to write")
	flag.Parse()

	f, err := os.Open(*in)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	reVersion := regexp.MustCompile(`^#\s+version\s+(\S+)`)
	reZ := regexp.MustCompile(`^Z\s+(\S+)`)
	reL := regexp.MustCompile(`^L\s+\S+\s+(\S+)`)

	version := "unknown"
	seen := make(map[string]bool)
	var names []string
	r := bufio.NewReader(f)
	for err != io.EOF {
		var l string
		l, err = r.ReadString('\n')
		if err != nil && err != io.EOF {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		var name string
		if m := reVersion.FindStringSubmatch(l); m != nil {
			version = m[1]
		} else if m := reZ.FindStringSubmatch(l); m != nil {
			name = m[1]
		} else if m := reL.FindStringSubmatch(l); m != nil {
			// Links carry the legacy names (US/Eastern, CET, ...) users actually type.
			name = m[1]
		}
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	slices.Sort(names)

	lines := []string{
		`// Code generated by go run ./build; DO NOT EDIT.`,
		``,
		`package zones`,
		``,
		fmt.Sprintf(`// ianaNames lists every zone and link name from tzdata.zi (version %s).`, version),
		`var ianaNames = []string{`,
	}
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%q,", name))
	}
	lines = append(lines, `}`)

	src, err := format.Source([]byte(strings.Join(lines, "\n") + "\n"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, src, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
