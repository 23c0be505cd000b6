package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/attic-labs/ugit/cmd/ugit/style"
	"github.com/attic-labs/ugit/fsck"
	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/repo"
)

func runInit() error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	r, err := repo.Init(wd)
	if err != nil {
		return err
	}
	fmt.Printf("Initialized empty ugit repository in %s\n", r.GitDir)
	return nil
}

func openHere() (*repo.Repo, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return repo.Open(wd)
}

func runHashObject(path string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oid, err := r.HashObject(path)
	if err != nil {
		return err
	}
	fmt.Println(oid)
	return nil
}

func runCatFile(name string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oid, err := r.Resolve(name)
	if err != nil {
		return err
	}
	data, err := r.CatFile(oid)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func runWriteTree(dir string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oid, err := r.WriteTree(dir)
	if err != nil {
		return err
	}
	fmt.Println(oid)
	return nil
}

func runReadTree(name string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oid, err := r.Resolve(name)
	if err != nil {
		return err
	}
	return r.ReadTree(oid)
}

func runCommit(message string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oid, err := r.Commit([]byte(message))
	if err != nil {
		return err
	}
	fmt.Println(oid)
	return nil
}

func runLog(name string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	oids, err := r.Log(name)
	if err != nil {
		return err
	}

	w := style.NewStdout()
	out := bufio.NewWriter(w)
	defer out.Flush()

	refsByOID := refLabelsByOID(r)
	for _, oid := range oids {
		c, err := r.GetCommit(oid)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s", w.OID("commit "+oid.String()))
		for _, label := range refsByOID[oid] {
			fmt.Fprintf(out, " %s", w.RefName("("+label+")"))
		}
		fmt.Fprintln(out)
		fmt.Fprintf(out, "    %s\n\n", c.Message)
	}
	return nil
}

func runCheckout(name string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	return r.Checkout(name)
}

func runTag(tag, point string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	return r.CreateTag(tag, point)
}

func runBranch(branch, point string) error {
	r, err := openHere()
	if err != nil {
		return err
	}
	return r.CreateBranch(branch, point)
}

func runFsck() error {
	r, err := openHere()
	if err != nil {
		return err
	}
	report, err := fsck.Run(r.Objects)
	if err != nil {
		return err
	}

	w := style.NewStdout()
	for _, p := range report.Problems {
		fmt.Fprintln(w, w.Problem(p))
	}
	if report.Clean() {
		fmt.Fprintln(w, w.OK(report.Summary()))
		return nil
	}
	fmt.Fprintln(w, report.Summary())
	return nil
}

// refLabelsByOID groups every ref name pointing (directly, or via one
// symbolic hop for HEAD) at a given commit, so `log` can annotate each
// commit the way `git log --decorate` does.
func refLabelsByOID(r *repo.Repo) map[hash.ObjectID][]string {
	out := map[hash.ObjectID][]string{}
	refs, err := r.AllRefs()
	if err != nil {
		return out
	}
	direct := map[string]hash.ObjectID{}
	for _, rv := range refs {
		if rv.Value.Symbolic {
			continue
		}
		direct[rv.Name] = rv.Value.OID
		out[rv.Value.OID] = append(out[rv.Value.OID], rv.Name)
	}
	for _, rv := range refs {
		if !rv.Value.Symbolic {
			continue
		}
		if oid, ok := direct[rv.Value.Target]; ok {
			out[oid] = append(out[oid], rv.Name)
		}
	}
	return out
}
