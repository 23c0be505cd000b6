// Package repo implements L6, the thin working-tree orchestrators from
// spec.md §4.6 (write_tree, read_tree, checkout, create_tag,
// create_branch) plus init, hash-object, cat-file and commit, wiring
// together objstore (L1), refstore (L2), treecodec (L3), commitlog
// (L4) and resolve (L5) behind one Repo handle.
//
// Grounded on felixge-can's Repo/DirRepo split (one small interface in
// front of a directory-backed implementation) and on the teacher's
// dataset package, which is the closest noms analogue to "the object
// orchestrating a working directory against a ref".
package repo

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/attic-labs/ugit/commitlog"
	"github.com/attic-labs/ugit/config"
	"github.com/attic-labs/ugit/hash"
	"github.com/attic-labs/ugit/objstore"
	"github.com/attic-labs/ugit/refstore"
	"github.com/attic-labs/ugit/resolve"
	"github.com/attic-labs/ugit/treecodec"
	"github.com/attic-labs/ugit/ugiterr"
)

// DirName is the hidden directory holding all repository state.
const DirName = ".ugit"

// ConfigFileName is the optional settings file under DirName.
const ConfigFileName = "config"

// Repo is a handle on a ugit repository rooted at WorkDir, with its
// state directory at WorkDir/.ugit.
type Repo struct {
	WorkDir string
	GitDir  string
	Config  config.Config

	Objects *objstore.Store
	Refs    *refstore.Store
	ignore  treecodec.IgnoreFunc
}

// Init materializes a new repository's directory structure under
// workDir and returns a handle to it. HEAD is left symbolic, pointing
// at refs/heads/<default-branch> (spec.md §9's open question, resolved
// by SPEC_FULL.md in favor of a symbolic default).
func Init(workDir string) (*Repo, error) {
	gitDir := filepath.Join(workDir, DirName)
	objects := objstore.New(filepath.Join(gitDir, objstore.ObjectsDirName))
	if err := objects.Init(); err != nil {
		return nil, err
	}

	refs := refstore.New(gitDir)
	cfg, err := config.Load(filepath.Join(gitDir, ConfigFileName))
	if err != nil {
		return nil, err
	}
	if err := refs.UpdateSymbolicRef(refstore.HeadName, "refs/heads/"+cfg.Core.DefaultBranch); err != nil {
		return nil, err
	}

	return newRepo(workDir, gitDir, cfg, objects, refs), nil
}

// Open loads a handle to an already-initialized repository rooted at
// workDir. It fails with NotFound if workDir/.ugit/objects is absent.
func Open(workDir string) (*Repo, error) {
	gitDir := filepath.Join(workDir, DirName)
	if _, err := os.Stat(filepath.Join(gitDir, objstore.ObjectsDirName)); err != nil {
		if os.IsNotExist(err) {
			return nil, ugiterr.New(ugiterr.NotFound, "not a ugit repository: %s", workDir)
		}
		return nil, ugiterr.Wrap(ugiterr.IoError, err, "opening repository at %s", workDir)
	}

	cfg, err := config.Load(filepath.Join(gitDir, ConfigFileName))
	if err != nil {
		return nil, err
	}

	objects := objstore.New(filepath.Join(gitDir, objstore.ObjectsDirName))
	refs := refstore.New(gitDir)
	return newRepo(workDir, gitDir, cfg, objects, refs), nil
}

func newRepo(workDir, gitDir string, cfg config.Config, objects *objstore.Store, refs *refstore.Store) *Repo {
	return &Repo{
		WorkDir: workDir,
		GitDir:  gitDir,
		Config:  cfg,
		Objects: objects,
		Refs:    refs,
		ignore:  treecodec.NewIgnore(DirName, cfg.Ignore.Patterns),
	}
}

// HashObject stores the contents of path as a blob and returns its
// ObjectID.
func (r *Repo) HashObject(path string) (hash.ObjectID, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return hash.ObjectID{}, ugiterr.Wrap(ugiterr.IoError, err, "reading %s", path)
	}
	return r.Objects.Put(objstore.KindBlob, data)
}

// CatFile returns the raw bytes of the blob named by oid.
func (r *Repo) CatFile(oid hash.ObjectID) ([]byte, error) {
	return r.Objects.Get(oid, objstore.KindBlob)
}

// WriteTree serializes dir (relative to, or equal to, WorkDir) into the
// object store and returns the root tree's ObjectID.
func (r *Repo) WriteTree(dir string) (hash.ObjectID, error) {
	return treecodec.WriteTree(r.Objects, dir, r.ignore)
}

// ReadTree empties WorkDir and restores it to the tree named rootOID.
func (r *Repo) ReadTree(rootOID hash.ObjectID) error {
	return treecodec.ReadTree(r.Objects, r.WorkDir, rootOID, r.ignore)
}

// Commit snapshots WorkDir, links it to the current HEAD as parent (if
// any), stores the resulting commit object, and advances HEAD —
// following symbolic HEAD so that committing on a branch advances that
// branch, per spec.md §9's fix to the teacher's direct-HEAD-write bug.
func (r *Repo) Commit(message []byte) (hash.ObjectID, error) {
	treeOID, err := r.WriteTree(r.WorkDir)
	if err != nil {
		return hash.ObjectID{}, err
	}

	var parent *hash.ObjectID
	if head, err := r.Refs.GetRef(refstore.HeadName, true); err != nil {
		return hash.ObjectID{}, err
	} else if head != nil {
		p := head.OID
		parent = &p
	}

	oid, err := commitlog.Put(r.Objects, commitlog.Commit{Tree: treeOID, Parent: parent, Message: message})
	if err != nil {
		return hash.ObjectID{}, err
	}

	if err := r.Refs.UpdateRef(refstore.HeadName, oid, true); err != nil {
		return hash.ObjectID{}, err
	}
	return oid, nil
}

// GetCommit loads and decodes the commit named oid.
func (r *Repo) GetCommit(oid hash.ObjectID) (commitlog.Commit, error) {
	return commitlog.Get(r.Objects, oid)
}

// Log resolves name and returns the ordered history reachable from it,
// per commitlog.CommitsAndParents.
func (r *Repo) Log(name string) ([]hash.ObjectID, error) {
	oid, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return commitlog.CommitsAndParents(r.Objects, []hash.ObjectID{oid})
}

// Resolve turns name into a canonical ObjectID, per spec.md §4.5.
func (r *Repo) Resolve(name string) (hash.ObjectID, error) {
	return resolve.GetOID(r.Refs, name)
}

// Checkout resolves name to a commit, restores its tree into WorkDir,
// and points HEAD directly at that commit (not symbolically — switching
// branches by name, as opposed to detaching onto a specific commit, is
// out of scope per spec.md §4.6).
func (r *Repo) Checkout(name string) error {
	oid, err := r.Resolve(name)
	if err != nil {
		return err
	}
	c, err := r.GetCommit(oid)
	if err != nil {
		return err
	}
	if err := r.ReadTree(c.Tree); err != nil {
		return err
	}
	return r.Refs.UpdateRef(refstore.HeadName, oid, false)
}

// CreateTag points refs/tags/<tag> at the resolution of name.
func (r *Repo) CreateTag(tag, name string) error {
	oid, err := r.Resolve(name)
	if err != nil {
		return err
	}
	return r.Refs.UpdateRef("refs/tags/"+tag, oid, false)
}

// CreateBranch points refs/heads/<branch> at the resolution of name.
func (r *Repo) CreateBranch(branch, name string) error {
	oid, err := r.Resolve(name)
	if err != nil {
		return err
	}
	return r.Refs.UpdateRef("refs/heads/"+branch, oid, false)
}

// AllRefs returns every ref currently known to the repository, HEAD
// included, for consumers like `ugit k`.
func (r *Repo) AllRefs() ([]refstore.RefAndValue, error) {
	return r.Refs.IterRefs()
}
