// Command ugit is the CLI front end over the repo package: one
// subcommand per operation in spec.md §6, plus the supplemental fsck
// command SPEC_FULL.md adds.
//
// Grounded on the teacher's cmd/noms layout (one flag.FlagSet-driven
// main per subcommand, later generations of which switched to a single
// dispatching binary) generalized to gopkg.in/alecthomas/kingpin.v2,
// the subcommand-parsing library the rest of the example pack uses.
// --cpu-profile follows the teacher's own use of github.com/pkg/profile
// around cmd/noms's hot paths.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/profile"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/attic-labs/ugit/d"
	"github.com/attic-labs/ugit/ugiterr"
)

var (
	app = kingpin.New("ugit", "A small content-addressed version control engine.")

	cpuProfile = app.Flag("cpu-profile", "write a CPU profile to this path for the duration of the command").String()

	initCmd = app.Command("init", "create a new repository in the current directory")

	hashObjectCmd  = app.Command("hash-object", "store a file's contents as a blob and print its object id")
	hashObjectFile = hashObjectCmd.Arg("file", "file to hash").Required().String()

	catFileCmd  = app.Command("cat-file", "print the contents of a blob")
	catFileName = catFileCmd.Arg("object", "object id or name to resolve").Required().String()

	writeTreeCmd = app.Command("write-tree", "serialize a directory into the object store")
	writeTreeDir = writeTreeCmd.Arg("dir", "directory to serialize").Default(".").String()

	readTreeCmd  = app.Command("read-tree", "restore the working directory to a stored tree")
	readTreeName = readTreeCmd.Arg("tree", "object id or name to resolve").Required().String()

	commitCmd     = app.Command("commit", "snapshot the working directory as a new commit")
	commitMessage = commitCmd.Flag("message", "commit message").Short('m').Required().String()

	logCmd  = app.Command("log", "show commit history reachable from a name")
	logName = logCmd.Arg("name", "object id or name to resolve").Default("@").String()

	checkoutCmd  = app.Command("checkout", "restore the working directory to a commit and move HEAD")
	checkoutName = checkoutCmd.Arg("name", "object id or name to resolve").Required().String()

	tagCmd   = app.Command("tag", "point refs/tags/<name> at a commit")
	tagName  = tagCmd.Arg("name", "tag to create").Required().String()
	tagPoint = tagCmd.Arg("point", "object id or name to tag").Default("@").String()

	branchCmd   = app.Command("branch", "point refs/heads/<name> at a commit")
	branchName  = branchCmd.Arg("name", "branch to create").Required().String()
	branchPoint = branchCmd.Arg("point", "object id or name to branch from").Default("@").String()

	kCmd     = app.Command("k", "render every ref and its reachable commits as a DOT graph")
	kOpen    = kCmd.Flag("open", "render and open the graph with the system's default viewer").Bool()
	kOutPath = kCmd.Flag("out", "write the DOT graph to this path instead of stdout").String()

	fsckCmd = app.Command("fsck", "verify every object's digest and reference integrity")
)

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *cpuProfile != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*cpuProfile)).Stop()
	}

	err := d.Try(func() {
		d.PanicIfError(dispatch(command))
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ugit:", friendlyMessage(err))
		os.Exit(exitCode(err))
	}
}

func dispatch(command string) error {
	switch command {
	case initCmd.FullCommand():
		return runInit()
	case hashObjectCmd.FullCommand():
		return runHashObject(*hashObjectFile)
	case catFileCmd.FullCommand():
		return runCatFile(*catFileName)
	case writeTreeCmd.FullCommand():
		return runWriteTree(*writeTreeDir)
	case readTreeCmd.FullCommand():
		return runReadTree(*readTreeName)
	case commitCmd.FullCommand():
		return runCommit(*commitMessage)
	case logCmd.FullCommand():
		return runLog(*logName)
	case checkoutCmd.FullCommand():
		return runCheckout(*checkoutName)
	case tagCmd.FullCommand():
		return runTag(*tagName, *tagPoint)
	case branchCmd.FullCommand():
		return runBranch(*branchName, *branchPoint)
	case kCmd.FullCommand():
		return runK(*kOpen, *kOutPath)
	case fsckCmd.FullCommand():
		return runFsck()
	}
	return ugiterr.New(ugiterr.InvalidInput, "unknown command %q", command)
}

// friendlyMessage strips the taxonomy-kind prefix ugiterr.Error.Error()
// puts on every message, since the CLI already reports the failure kind
// via its exit code.
func friendlyMessage(err error) string {
	msg := err.Error()
	if te, ok := err.(*ugiterr.Error); ok {
		prefix := te.Kind().String() + ": "
		if len(msg) >= len(prefix) && msg[:len(prefix)] == prefix {
			return msg[len(prefix):]
		}
	}
	return msg
}

// exitCode maps a ugiterr.Kind onto a shell exit status. Non-taxonomy
// errors (an assertion d.Try caught, say) exit 1.
func exitCode(err error) int {
	switch {
	case ugiterr.Is(err, ugiterr.NotFound), ugiterr.Is(err, ugiterr.UnknownName):
		return 2
	case ugiterr.Is(err, ugiterr.InvalidInput):
		return 3
	case ugiterr.Is(err, ugiterr.Corrupt):
		return 4
	default:
		return 1
	}
}
