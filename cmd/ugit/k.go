package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/skratchdot/open-golang/open"

	"github.com/attic-labs/ugit/commitlog"
	"github.com/attic-labs/ugit/hash"
)

// runK renders every ref and the commits reachable from it as a DOT
// graph: one node per commit, one edge per parent link, and a dashed
// edge from each ref name to the commit it names. Grounded on git's own
// "k" alias (a long-standing community convention, not a real git
// subcommand) for visualizing exactly this.
func runK(doOpen bool, outPath string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	refs, err := r.AllRefs()
	if err != nil {
		return err
	}

	var seeds []hash.ObjectID
	refNodes := map[string]hash.ObjectID{}
	for _, rv := range refs {
		if rv.Value.Symbolic {
			continue
		}
		seeds = append(seeds, rv.Value.OID)
		refNodes[rv.Name] = rv.Value.OID
	}

	oids, err := commitlog.CommitsAndParents(r.Objects, seeds)
	if err != nil {
		return err
	}

	var out bufio.Writer
	var f *os.File
	if outPath == "" && !doOpen {
		out.Reset(os.Stdout)
	} else {
		path := outPath
		if path == "" {
			path = "ugit-k.dot"
		}
		var ferr error
		f, ferr = os.Create(path)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out.Reset(f)
	}

	fmt.Fprintln(&out, "digraph ugit {")
	fmt.Fprintln(&out, `  node [shape=box, fontname="monospace"];`)
	for _, oid := range oids {
		c, err := r.GetCommit(oid)
		if err != nil {
			return err
		}
		fmt.Fprintf(&out, "  %q [label=%q];\n", oid.String(), short(oid)+" "+firstLine(c.Message))
		if c.Parent != nil {
			fmt.Fprintf(&out, "  %q -> %q;\n", oid.String(), c.Parent.String())
		}
	}
	for name, oid := range refNodes {
		fmt.Fprintf(&out, "  %q [shape=ellipse, style=dashed];\n", name)
		fmt.Fprintf(&out, "  %q -> %q [style=dashed];\n", name, oid.String())
	}
	fmt.Fprintln(&out, "}")
	if err := out.Flush(); err != nil {
		return err
	}

	if doOpen {
		path := outPath
		if path == "" {
			path = "ugit-k.dot"
		}
		return open.Start(path)
	}
	return nil
}

func short(oid hash.ObjectID) string {
	s := oid.String()
	return s[:8]
}

func firstLine(message []byte) string {
	for i, b := range message {
		if b == '\n' {
			return string(message[:i])
		}
	}
	return string(message)
}
